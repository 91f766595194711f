package chatbot

// DefaultEntries is the FAQ loaded into an empty chatbot_qa table.
var DefaultEntries = []Entry{
	{Question: "Hospital Hours", Category: "General", Answer: "Our hospital is open 24/7 for emergency services. OPD timings are Monday to Saturday: 9:00 AM - 5:00 PM. Sunday: 9:00 AM - 1:00 PM."},
	{Question: "Book Appointment", Category: "Appointments", Answer: `You can book an appointment by clicking on the "Appointments" section in the navigation menu, or call us at +91-XXX-XXX-XXXX.`},
	{Question: "Emergency Contact", Category: "Emergency", Answer: "🚨 For emergencies, please call our 24/7 helpline: +91-XXX-XXX-XXXX or visit our Emergency Department immediately."},
	{Question: "Departments", Category: "Departments", Answer: "We have the following departments: Cardiology, Neurology, Orthopedics, Pediatrics, General Medicine, Surgery, and more. Visit the Departments page for complete details."},
	{Question: "Visitor Policy", Category: "General", Answer: "Visiting hours are 8:00 AM - 6:00 PM daily. Maximum 2 visitors per patient. Please carry a valid ID card."},
	{Question: "how to register", Category: "Registration", Answer: "You can register as a new patient by visiting our reception desk with a valid ID proof and address proof, or use the Patients section in our system."},
	{Question: "doctor availability", Category: "Doctors", Answer: "Our doctors are available during OPD hours. For specific doctor availability, please check the Doctors section or call our reception."},
	{Question: "payment methods", Category: "Billing", Answer: "We accept Cash, Credit/Debit Cards, UPI, Net Banking, and Health Insurance. Please contact our billing department for insurance claims."},
	{Question: "medical records", Category: "Records", Answer: "You can access your medical records through our Medical Records section. Please bring your patient ID and valid identification."},
	{Question: "ambulance service", Category: "Emergency", Answer: "Yes, we provide 24/7 ambulance services. Call our emergency number +91-XXX-XXX-XXXX for immediate assistance."},
	{Question: "laboratory services", Category: "Laboratory", Answer: "Our laboratory is open from 7:00 AM - 7:00 PM on weekdays and 8:00 AM - 2:00 PM on weekends. Most reports are available within 24 hours."},
	{Question: "pharmacy timings", Category: "Pharmacy", Answer: "Our in-house pharmacy is open 24/7 to serve you."},
	{Question: "insurance", Category: "Insurance", Answer: "We accept most major health insurance providers. Please bring your insurance card and policy details during registration."},
	{Question: "location", Category: "General", Answer: "We are located at [Hospital Address]. You can find detailed directions on our website or contact us for assistance."},
	{Question: "covid guidelines", Category: "Safety", Answer: "Please wear masks, maintain social distancing, and sanitize your hands. Temperature screening is mandatory at entry."},
	{Question: "parking facility", Category: "Facilities", Answer: "We have ample parking space available for patients and visitors. Parking charges apply for stays longer than 2 hours."},
	{Question: "cafeteria timings", Category: "Facilities", Answer: "Our cafeteria is open from 7:00 AM - 9:00 PM. We serve breakfast, lunch, and dinner."},
	{Question: "blood bank", Category: "Services", Answer: "Yes, we have a fully functional blood bank. For blood donation or requirements, please contact our blood bank department."},
	{Question: "opd timings", Category: "General", Answer: "OPD timings are Monday to Saturday: 9:00 AM - 5:00 PM. Sunday: 9:00 AM - 1:00 PM. Please book appointments in advance."},
	{Question: "vaccination", Category: "Services", Answer: "We provide all types of vaccinations for children and adults. Please check with our vaccination department for schedules."},
}
