package wizard

import "energyplus/onboarding-portal/internal/onboarding"

// FieldKind describes how a form field's values are collected.
type FieldKind int

const (
	// Single fields hold one value: text inputs, selects, radios.
	Single FieldKind = iota
	// Multi fields hold a set of selected values: checkbox groups.
	Multi
	// Rows fields hold repeating table rows: team members, custom systems.
	Rows
)

// FieldDef describes one form field within a step.
type FieldDef struct {
	Name     string    `json:"name"`
	Kind     FieldKind `json:"kind"`
	Required bool      `json:"required"`
	// Columns names the per-row inputs of a Rows field.
	Columns []string `json:"columns,omitempty"`
}

// StepDefinition ties a wizard step to its intake section and fields.
type StepDefinition struct {
	Step    int        `json:"step"`
	Section string     `json:"section"`
	Title   string     `json:"title"`
	Fields  []FieldDef `json:"fields"`
}

func single(names ...string) []FieldDef {
	fields := make([]FieldDef, 0, len(names))
	for _, n := range names {
		fields = append(fields, FieldDef{Name: n, Kind: Single})
	}
	return fields
}

var steps = []StepDefinition{
	{
		Step:    1,
		Section: onboarding.SectionOfferAndEconomics,
		Title:   "Offer & Economics",
		Fields: append([]FieldDef{
			{Name: "clientName", Kind: Single, Required: true},
			{Name: "clientEmail", Kind: Single, Required: true},
			{Name: "companyName", Kind: Single, Required: true},
			{Name: "phoneNumber", Kind: Single},
		}, single(
			"offers", "niche", "icp", "bigPromise", "whyBuying", "bestSeller", "guarantee",
			"pricingStructure", "paymentOptions", "deposits", "profitMargins",
			"onboardingProcess", "whatsBroken", "clientCommunity", "upsells", "activeClients",
			"fundingQualify", "financingOptions", "paperworkProcess", "fundingConfusion",
		)...),
	},
	{
		Step:    2,
		Section: onboarding.SectionLeadFlow,
		Title:   "Lead Flow",
		Fields: append([]FieldDef{
			{Name: "organicChannels", Kind: Multi},
			{Name: "adPlatforms", Kind: Multi},
		}, single(
			"onlineCommunity", "localPresence", "postingFrequency", "contentResponsible",
			"leadflowBottlenecks",
			"funnelSoftware", "optinFunnels", "vslFunnels", "bookingFunnels",
			"leadMagnets", "bestLeadMagnet", "funnelAssets",
			"dailyAdSpend", "mediaBuying", "paidAdsBottlenecks", "adsLibrary",
		)...),
	},
	{
		Step:    3,
		Section: onboarding.SectionAppointmentFlow,
		Title:   "Appointment Flow",
		Fields: single(
			"bookingSoftware", "bookingProcess", "discoveryClosing", "bestChannel",
			"settingScripts", "confirmationProcess", "discoverySequences", "closingSequences",
			"disqualifyProcess", "recordings", "apptBottlenecks",
		),
	},
	{
		Step:    4,
		Section: onboarding.SectionDealFlow,
		Title:   "Deal Flow",
		Fields: single(
			"salesScripts", "discoveryScripts",
			"closedCallRecordings", "discoveryCallRecordings", "topPerformers",
			"dealFlowBottlenecks",
		),
	},
	{
		Step:    5,
		Section: onboarding.SectionKPITracking,
		Title:   "KPI Tracking",
		Fields: single(
			"kpi_cac", "kpi_cost_per_lead", "kpi_speed_to_lead",
			"kpi_lead_to_appointment", "kpi_closing_rate", "kpi_followup_completion",
		),
	},
	{
		Step:    6,
		Section: onboarding.SectionTeamFlow,
		Title:   "Team Flow",
		Fields: append([]FieldDef{
			{Name: "setters", Kind: Rows, Columns: []string{"name", "role", "channels", "notes", "eval"}},
			{Name: "triagers", Kind: Rows, Columns: []string{"name", "responsibilities", "tools", "notes", "eval"}},
			{Name: "closers", Kind: Rows, Columns: []string{"name", "role", "channels", "notes", "eval"}},
		}, single(
			"setterEOD", "setterShow",
			"triagerEOD", "triagerShow",
			"closerEOD", "closerShow",
			"onboardingAssets", "commSoftware", "callReview",
		)...),
	},
	{
		Step:    7,
		Section: onboarding.SectionSystemsAndLogins,
		Title:   "Systems & Logins",
		Fields: append([]FieldDef{
			{Name: "systems", Kind: Multi},
			{Name: "customSystems", Kind: Rows, Columns: []string{"name", "login", "notes"}},
		}, single(
			"login_google_email", "notes_google_email",
			"login_zapier", "notes_zapier",
			"login_make", "notes_make",
			"login_payment", "notes_payment",
			"login_domain", "notes_domain",
			"login_sms", "notes_sms",
			"login_scheduler", "notes_scheduler",
			"login_funnel", "notes_funnel",
			"login_crm", "notes_crm",
			"login_email_marketing", "notes_email_marketing",
			"login_fb_bm", "notes_fb_bm",
			"login_fb_page", "notes_fb_page",
			"login_instagram", "notes_instagram",
			"login_tiktok", "notes_tiktok",
			"login_linkedin", "notes_linkedin",
			"login_youtube", "notes_youtube",
			"login_twitter", "notes_twitter",
			"login_pinterest", "notes_pinterest",
			"login_meta_ads", "notes_meta_ads",
			"login_google_ads", "notes_google_ads",
			"login_tiktok_ads", "notes_tiktok_ads",
			"login_linkedin_ads", "notes_linkedin_ads",
			"login_youtube_ads", "notes_youtube_ads",
			"websiteUrl", "websiteNotes",
		)...),
	},
}

// Steps returns all step definitions in order.
func Steps() []StepDefinition {
	return steps
}

// StepFor returns the definition of one step.
func StepFor(step int) (StepDefinition, bool) {
	if step < 1 || step > len(steps) {
		return StepDefinition{}, false
	}
	return steps[step-1], true
}
