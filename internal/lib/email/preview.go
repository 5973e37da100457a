package email

// PreviewData contains sample template data for local preview/testing.
//
// It maps:
//
//	templateName -> (templateVariableName -> exampleValue)
var PreviewData = map[Template]map[string]string{
	TemplateConfirmation: {
		"SubscriberName":   "Ursula",
		"ConfirmationLink": "http://127.0.0.1:8000/subscriptions/confirm?subscription_token=abcdefghijklmnopqrstuvwxy",
	},
	TemplateWelcome: {
		"SubscriberName": "Ursula",
	},
}
