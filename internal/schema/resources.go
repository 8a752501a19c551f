package schema

func resources() map[string]*Schema {
	listInfo := Object("Paging information", map[string]*Schema{
		"page":        Int("Current page, starting at 1"),
		"num_pages":   Int("Total number of pages"),
		"num_results": Int("Total number of results"),
		"page_size":   Int("Results per page"),
	})
	accountRef := Object("An account", map[string]*Schema{
		"account_id":    String("Account identifier"),
		"email_address": String("Account email address"),
		"role_code":     Enum("Team role: admin, developer, manager or member", "a", "d", "m", "t"),
	}, "email_address")
	formDocument := Object("A document in the form", map[string]*Schema{
		"name":  String("Document name"),
		"index": Int("Position of the document"),
	})
	formField := Object("A field the sender fills in", map[string]*Schema{
		"name": String("Field name, used with --custom-field name=value"),
		"type": Enum("Field type", "text", "checkbox"),
	})
	formRole := Object("A role defined by the form", map[string]*Schema{
		"name":  String("Role name, used as the signer or CC key when sending"),
		"order": Int("Signing position for ordered forms"),
	}, "name")

	statusCode := Enum("Signature status",
		"awaiting_signature", "signed", "declined", "on_hold",
		"error_unknown", "error_file", "error_component_position", "error_text_tag")

	signature := Object("One signer's signature on a request", map[string]*Schema{
		"signature_id":         String("Signature identifier, used for embedded signing"),
		"signer_email_address": String("Signer email address"),
		"signer_name":          String("Signer name"),
		"signer_role":          String("Form role the signer fills"),
		"order":                Int("Signing position when the request is ordered"),
		"status_code":          statusCode,
		"signed_at":            Timestamp("When the signer signed"),
		"last_viewed_at":       Timestamp("When the signer last viewed the document"),
		"last_reminded_at":     Timestamp("When the signer was last reminded"),
		"has_pin":              Bool("Whether the signer must enter a PIN"),
	}, "signature_id", "signer_email_address", "status_code")

	signatureRequest := Object("A request for one or more signers to sign documents", map[string]*Schema{
		"signature_request_id":    String("Signature request identifier"),
		"title":                   String("Title shown in the HelloSign dashboard"),
		"subject":                 String("Email subject"),
		"message":                 String("Email message"),
		"test_mode":               Bool("Whether the request is a non-binding test"),
		"is_complete":             Bool("Whether every signer has signed"),
		"is_declined":             Bool("Whether a signer declined"),
		"has_error":               Bool("Whether processing failed"),
		"requester_email_address": String("Email address of the sender"),
		"created_at":              Timestamp("When the request was sent"),
		"signing_url":             String("Link signers use to sign"),
		"details_url":             String("Link to the request in the HelloSign dashboard"),
		"files_url":               String("API URL of the document files"),
		"cc_email_addresses":      Array(String("Email address"), "Addresses copied on the completed documents"),
		"signatures":              Array(signature, "One entry per signer"),
		"metadata":                Map("Key-value pairs attached when sending"),
	}, "signature_request_id", "is_complete", "signatures")

	signatureRequestList := Object("A page of signature requests", map[string]*Schema{
		"list_info":          listInfo,
		"signature_requests": Array(signatureRequest, "Signature requests, newest first"),
	}, "list_info", "signature_requests")

	reusableForm := Object("A template documents can be sent from", map[string]*Schema{
		"reusable_form_id": String("Reusable form identifier"),
		"title":            String("Form title"),
		"message":          String("Default email message"),
		"signer_roles":     Array(formRole, "Roles that must be filled by signers"),
		"cc_roles":         Array(formRole, "Roles that receive a copy"),
		"documents":        Array(formDocument, "Documents in the form"),
		"custom_fields":    Array(formField, "Sender-filled fields"),
		"accounts":         Array(accountRef, "Accounts that can use the form"),
		"is_creator":       Bool("Whether the current account created the form"),
		"can_edit":         Bool("Whether the current account can edit the form"),
	}, "reusable_form_id", "title", "signer_roles")

	quotas := Object("Remaining usage; missing values are unlimited", map[string]*Schema{
		"api_signature_requests_left": Int("API signature requests left this month"),
		"documents_left":              Int("Documents left this month"),
		"templates_left":              Int("Reusable forms that can still be created"),
	})

	account := Object("The authenticated HelloSign account", map[string]*Schema{
		"account_id":    String("Account identifier"),
		"email_address": String("Account email address"),
		"callback_url":  String("URL that receives account events"),
		"role_code":     Enum("Team role", "a", "d", "m", "t"),
		"is_paid_hs":    Bool("Whether the account has a paid plan"),
		"quotas":        quotas,
	}, "account_id", "email_address")

	team := Object("The team of the authenticated account", map[string]*Schema{
		"name":             String("Team name"),
		"accounts":         Array(accountRef, "Team members"),
		"invited_accounts": Array(accountRef, "Pending invitations"),
	}, "name", "accounts")

	unclaimedDraft := Object("A draft the sender finishes in the HelloSign web app", map[string]*Schema{
		"claim_url":            String("Link that opens the draft"),
		"signing_redirect_url": String("Where signers land after signing"),
		"test_mode":            Bool("Whether the draft is a non-binding test"),
		"expires_at":           Timestamp("When the claim URL stops working"),
	}, "claim_url")

	embedded := Object("A URL for signing inside an iFrame", map[string]*Schema{
		"sign_url":   String("One-time signing URL"),
		"expires_at": Timestamp("When the URL stops working"),
	}, "sign_url", "expires_at")

	return map[string]*Schema{
		"account":                account,
		"embedded":               embedded,
		"reusable_form":          reusableForm,
		"signature":              signature,
		"signature_request":      signatureRequest,
		"signature_request_list": signatureRequestList,
		"team":                   team,
		"unclaimed_draft":        unclaimedDraft,
	}
}
