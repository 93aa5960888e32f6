package onboarding

import "time"

// Section names in wizard order. The names double as JSON keys in the
// persisted record, so they must not change.
const (
	SectionOfferAndEconomics = "offer_and_economics"
	SectionLeadFlow          = "lead_flow"
	SectionAppointmentFlow   = "appointment_flow"
	SectionDealFlow          = "deal_flow"
	SectionKPITracking       = "kpi_tracking"
	SectionTeamFlow          = "team_flow"
	SectionSystemsAndLogins  = "systems_and_logins"
)

// SectionNames lists all sections in wizard step order.
var SectionNames = []string{
	SectionOfferAndEconomics,
	SectionLeadFlow,
	SectionAppointmentFlow,
	SectionDealFlow,
	SectionKPITracking,
	SectionTeamFlow,
	SectionSystemsAndLogins,
}

// StepCount is the number of wizard steps, one per section.
var StepCount = len(SectionNames)

// Section holds the answers of one intake section. Values are strings for
// single-value controls, []any for multi-select and repeating-row fields.
type Section map[string]any

// Record is the full onboarding state for one client engagement.
type Record struct {
	CurrentStep       int       `json:"currentStep"`
	CompletedSteps    []int     `json:"completedSteps"`
	LastUpdated       time.Time `json:"lastUpdated"`
	OfferAndEconomics Section   `json:"offer_and_economics"`
	LeadFlow          Section   `json:"lead_flow"`
	AppointmentFlow   Section   `json:"appointment_flow"`
	DealFlow          Section   `json:"deal_flow"`
	KPITracking       Section   `json:"kpi_tracking"`
	TeamFlow          Section   `json:"team_flow"`
	SystemsAndLogins  Section   `json:"systems_and_logins"`
}

// FallbackClientID identifies records captured before a client email was
// entered.
const FallbackClientID = "demo-client"

// ClientID derives the tracking identifier for this record: the captured
// client email, or FallbackClientID when none was entered.
func (r *Record) ClientID() string {
	if email, ok := r.OfferAndEconomics["clientEmail"].(string); ok && email != "" {
		return email
	}
	return FallbackClientID
}

// section returns a pointer to the named section, or nil for an unknown name.
func (r *Record) section(name string) *Section {
	switch name {
	case SectionOfferAndEconomics:
		return &r.OfferAndEconomics
	case SectionLeadFlow:
		return &r.LeadFlow
	case SectionAppointmentFlow:
		return &r.AppointmentFlow
	case SectionDealFlow:
		return &r.DealFlow
	case SectionKPITracking:
		return &r.KPITracking
	case SectionTeamFlow:
		return &r.TeamFlow
	case SectionSystemsAndLogins:
		return &r.SystemsAndLogins
	}
	return nil
}

// DefaultRecord returns a fresh record with every known field present and
// empty, positioned at step 1 with nothing completed.
func DefaultRecord() *Record {
	return &Record{
		CurrentStep:    1,
		CompletedSteps: []int{},
		LastUpdated:    time.Now().UTC(),
		OfferAndEconomics: Section{
			// Client information
			"clientName":  "",
			"clientEmail": "",
			"companyName": "",
			"phoneNumber": "",

			// Offers and services
			"offers":     "",
			"niche":      "",
			"icp":        "",
			"bigPromise": "",
			"whyBuying":  "",
			"bestSeller": "",
			"guarantee":  "",

			// Pricing and payment
			"pricingStructure": "",
			"paymentOptions":   "",
			"deposits":         "",
			"profitMargins":    "",

			// Client management
			"onboardingProcess": "",
			"whatsBroken":       "",
			"clientCommunity":   "",
			"upsells":           "",
			"activeClients":     "",

			// Funding options
			"fundingQualify":   "",
			"financingOptions": "",
			"paperworkProcess": "",
			"fundingConfusion": "",
		},
		LeadFlow: Section{
			// Organic
			"organicChannels":     []any{},
			"onlineCommunity":     "",
			"localPresence":       "",
			"postingFrequency":    "",
			"contentResponsible":  "",
			"leadflowBottlenecks": "",

			// Funnels and opt-ins
			"funnelSoftware": "",
			"optinFunnels":   "",
			"vslFunnels":     "",
			"bookingFunnels": "",
			"leadMagnets":    "",
			"bestLeadMagnet": "",
			"funnelAssets":   "",

			// Paid ads
			"adPlatforms":        []any{},
			"dailyAdSpend":       "",
			"mediaBuying":        "",
			"paidAdsBottlenecks": "",
			"adsLibrary":         "",
		},
		AppointmentFlow: Section{
			// Booking and process
			"bookingSoftware":  "",
			"bookingProcess":   "",
			"discoveryClosing": "",
			"bestChannel":      "",

			// Scripts and sequences
			"settingScripts":      "",
			"confirmationProcess": "",
			"discoverySequences":  "",
			"closingSequences":    "",
			"disqualifyProcess":   "",
			"recordings":          "",
			"apptBottlenecks":     "",
		},
		DealFlow: Section{
			"salesScripts":     "",
			"discoveryScripts": "",

			"closedCallRecordings":    "",
			"discoveryCallRecordings": "",
			"topPerformers":           "",
			"dealFlowBottlenecks":     "",
		},
		KPITracking: Section{
			"kpi_cac":                 "",
			"kpi_cost_per_lead":       "",
			"kpi_speed_to_lead":       "",
			"kpi_lead_to_appointment": "",
			"kpi_closing_rate":        "",
			"kpi_followup_completion": "",
		},
		TeamFlow: Section{
			"setters":    []any{},
			"setterEOD":  "",
			"setterShow": "",

			"triagers":    []any{},
			"triagerEOD":  "",
			"triagerShow": "",

			"closers":    []any{},
			"closerEOD":  "",
			"closerShow": "",

			"onboardingAssets": "",
			"commSoftware":     "",
			"callReview":       "",
		},
		SystemsAndLogins: Section{
			"systems": []any{},

			// Core business systems
			"login_google_email":    "",
			"notes_google_email":    "",
			"login_zapier":          "",
			"notes_zapier":          "",
			"login_make":            "",
			"notes_make":            "",
			"login_payment":         "",
			"notes_payment":         "",
			"login_domain":          "",
			"notes_domain":          "",
			"login_sms":             "",
			"notes_sms":             "",
			"login_scheduler":       "",
			"notes_scheduler":       "",
			"login_funnel":          "",
			"notes_funnel":          "",
			"login_crm":             "",
			"notes_crm":             "",
			"login_email_marketing": "",
			"notes_email_marketing": "",

			// Social media
			"login_fb_bm":     "",
			"notes_fb_bm":     "",
			"login_fb_page":   "",
			"notes_fb_page":   "",
			"login_instagram": "",
			"notes_instagram": "",
			"login_tiktok":    "",
			"notes_tiktok":    "",
			"login_linkedin":  "",
			"notes_linkedin":  "",
			"login_youtube":   "",
			"notes_youtube":   "",
			"login_twitter":   "",
			"notes_twitter":   "",
			"login_pinterest": "",
			"notes_pinterest": "",

			// Paid ads
			"login_meta_ads":     "",
			"notes_meta_ads":     "",
			"login_google_ads":   "",
			"notes_google_ads":   "",
			"login_tiktok_ads":   "",
			"notes_tiktok_ads":   "",
			"login_linkedin_ads": "",
			"notes_linkedin_ads": "",
			"login_youtube_ads":  "",
			"notes_youtube_ads":  "",

			// Website
			"websiteUrl":   "",
			"websiteNotes": "",

			"customSystems": []any{},
		},
	}
}
