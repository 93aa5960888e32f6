package report

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"
	"go.uber.org/zap"

	"energyplus/onboarding-portal/internal/kpi"
	"energyplus/onboarding-portal/internal/onboarding"
)

// Branding colors.
var (
	primaryGreen = [3]int{0, 255, 127}
	darkBg       = [3]int{18, 18, 18}
	lightGray    = [3]int{200, 200, 200}
)

// Generator renders a completed intake record as the branded onboarding
// report PDF.
type Generator struct {
	logger *zap.Logger
}

func NewGenerator(logger *zap.Logger) *Generator {
	return &Generator{logger: logger}
}

// Generate builds the report. The record is read only, never mutated.
func (g *Generator) Generate(ctx context.Context, rec *onboarding.Record) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	b := newBuilder()
	b.titleBanner()

	info := rec.OfferAndEconomics
	b.sectionHeader("Client Information")
	b.field("Company Name", str(info, "companyName"))
	b.field("Client Name", str(info, "clientName"))
	b.field("Email", str(info, "clientEmail"))
	b.field("Phone", str(info, "phoneNumber"))

	b.sectionHeader("Offer & Economics")
	b.field("Offers / Services", str(info, "offers"))
	b.field("Niche", str(info, "niche"))
	b.field("ICP (Ideal Customer Profile)", str(info, "icp"))
	b.field("Big Promise / Transformation", str(info, "bigPromise"))
	b.field("Why Are People Buying Your Offer?", str(info, "whyBuying"))
	b.field("Best-Seller Offer", str(info, "bestSeller"))
	b.field("Conditional Guarantee", str(info, "guarantee"))
	b.field("Pricing Structure", str(info, "pricingStructure"))
	b.field("Payment Options", str(info, "paymentOptions"))
	b.field("Deposits", str(info, "deposits"))
	b.field("Profit Margins Per Client", str(info, "profitMargins"))
	b.field("Client Onboarding Process", str(info, "onboardingProcess"))
	b.field("What's Broken?", str(info, "whatsBroken"))
	b.field("Client Community", str(info, "clientCommunity"))
	b.field("Upsells", str(info, "upsells"))
	b.field("Active Clients Count", str(info, "activeClients"))
	b.field("Funding / Incentives", str(info, "fundingQualify"))
	b.field("Financing Options", str(info, "financingOptions"))
	b.field("Incentive Paperwork", str(info, "paperworkProcess"))
	b.field("Client Confusion About Funding", str(info, "fundingConfusion"))

	lead := rec.LeadFlow
	b.sectionHeader("Lead Flow - Organic")
	b.field("Organic Channels", list(lead, "organicChannels"))
	b.field("Online Community", str(lead, "onlineCommunity"))
	b.field("Local Community Presence", str(lead, "localPresence"))
	b.field("Posting Frequency", str(lead, "postingFrequency"))
	b.field("Responsible for Content Distribution", str(lead, "contentResponsible"))
	b.field("Leadflow Bottlenecks", str(lead, "leadflowBottlenecks"))

	b.sectionHeader("Lead Flow - Funnels & Opt-ins")
	b.field("Funnel Software Used", str(lead, "funnelSoftware"))
	b.field("Opt-in Funnels", str(lead, "optinFunnels"))
	b.field("VSL Funnels", str(lead, "vslFunnels"))
	b.field("Booking Funnels", str(lead, "bookingFunnels"))
	b.field("Lead Magnets", str(lead, "leadMagnets"))
	b.field("Best Performing Lead Magnet", str(lead, "bestLeadMagnet"))
	b.field("Front-end Funnel Assets", str(lead, "funnelAssets"))

	b.sectionHeader("Lead Flow - Paid Ads")
	b.field("Ad Platforms Used", list(lead, "adPlatforms"))
	b.field("Daily Ad Spend per Channel", str(lead, "dailyAdSpend"))
	b.field("Media Buying", str(lead, "mediaBuying"))
	b.field("Paid Ads Bottlenecks", str(lead, "paidAdsBottlenecks"))
	b.field("Ads Library Link", str(lead, "adsLibrary"))

	appt := rec.AppointmentFlow
	b.sectionHeader("Appointment Flow")
	b.field("Booking Software Used", str(appt, "bookingSoftware"))
	b.field("Booking Process", str(appt, "bookingProcess"))
	b.field("Discovery + Closing Calls?", str(appt, "discoveryClosing"))
	b.field("Best Performing Channel", str(appt, "bestChannel"))
	b.field("Appointment-Setting Scripts", str(appt, "settingScripts"))
	b.field("Call Confirmation Process", str(appt, "confirmationProcess"))
	b.field("Discovery Call Sequences", str(appt, "discoverySequences"))
	b.field("Closing Call Sequences", str(appt, "closingSequences"))
	b.field("Disqualify / Cancel Process", str(appt, "disqualifyProcess"))
	b.field("Loom / Call Recordings", str(appt, "recordings"))
	b.field("Bottlenecks in Appointment Flow", str(appt, "apptBottlenecks"))

	deal := rec.DealFlow
	b.sectionHeader("Deal Flow")
	b.field("Sales Scripts", str(deal, "salesScripts"))
	b.field("Discovery Scripts", str(deal, "discoveryScripts"))
	b.field("Sales Call Recordings", str(deal, "closedCallRecordings"))
	b.field("Discovery Call Recordings", str(deal, "discoveryCallRecordings"))
	b.field("Best Performing Sales Reps", str(deal, "topPerformers"))
	b.field("Deal Flow Bottlenecks", str(deal, "dealFlowBottlenecks"))

	kpis := rec.KPITracking
	b.sectionHeader("KPI Baseline")
	b.field("Customer Acquisition Cost (CAC)", kpi.FormatMetric(str(kpis, "kpi_cac"), kpi.KindCurrency))
	b.field("Cost Per Lead", kpi.FormatMetric(str(kpis, "kpi_cost_per_lead"), kpi.KindCurrency))
	b.field("Speed-to-Lead", kpi.FormatMetric(str(kpis, "kpi_speed_to_lead"), kpi.KindPlain))
	b.field("Lead-to-Appointment Rate", kpi.FormatMetric(str(kpis, "kpi_lead_to_appointment"), kpi.KindPercent))
	b.field("Closing Rate", kpi.FormatMetric(str(kpis, "kpi_closing_rate"), kpi.KindPercent))
	b.field("Follow-Up Completion", kpi.FormatMetric(str(kpis, "kpi_followup_completion"), kpi.KindPercent))

	team := rec.TeamFlow
	b.sectionHeader("Team Flow - Performance")
	b.teamList("Setters", rows(team, "setters"), "role", "channels")
	b.teamList("Triagers", rows(team, "triagers"), "responsibilities", "tools")
	b.teamList("Closers", rows(team, "closers"), "role", "channels")
	b.field("Setter EOD Report Link", str(team, "setterEOD"))
	b.field("Triager EOD Report Link", str(team, "triagerEOD"))
	b.field("Closer EOD Report Link", str(team, "closerEOD"))
	b.field("Setter Show Report", str(team, "setterShow"))
	b.field("Triager Show Report", str(team, "triagerShow"))
	b.field("Closer Show Report", str(team, "closerShow"))
	b.field("Team Onboarding Assets", str(team, "onboardingAssets"))
	b.field("Team Communication Software", str(team, "commSoftware"))
	b.field("Call Review Process", str(team, "callReview"))

	systems := rec.SystemsAndLogins
	b.sectionHeader("Systems & Logins")
	b.field("Systems In Use", list(systems, "systems"))
	b.loginGroup("Core Business Systems", systems,
		"google_email", "zapier", "make", "payment", "domain",
		"sms", "scheduler", "funnel", "crm", "email_marketing")
	b.loginGroup("Social Media", systems,
		"fb_bm", "fb_page", "instagram", "tiktok", "linkedin",
		"youtube", "twitter", "pinterest")
	b.loginGroup("Paid Advertising", systems,
		"meta_ads", "google_ads", "tiktok_ads", "linkedin_ads", "youtube_ads")
	if url := str(systems, "websiteUrl"); url != "" {
		b.field("Website URL", url)
		b.field("Website Notes", str(systems, "websiteNotes"))
	}
	b.customSystems(rows(systems, "customSystems"))

	out, err := b.output()
	if err != nil {
		return nil, fmt.Errorf("failed to render report: %w", err)
	}

	g.logger.Info("Onboarding report generated",
		zap.String("company", str(info, "companyName")),
		zap.Int("bytes", len(out)))
	return out, nil
}

// builder wraps the document with the report's layout helpers.
type builder struct {
	pdf       *gofpdf.Fpdf
	contentW  float64
	pageWidth float64
}

func newBuilder() *builder {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(20, 20, 20)
	pdf.SetAutoPageBreak(true, 25)
	pdf.AliasNbPages("")
	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont("Helvetica", "", 8)
		pdf.SetTextColor(lightGray[0], lightGray[1], lightGray[2])
		pdf.CellFormat(0, 10,
			fmt.Sprintf("Energy+ Onboarding Report - Page %d of {nb}", pdf.PageNo()),
			"", 0, "C", false, 0, "")
	})

	pageWidth, _ := pdf.GetPageSize()
	return &builder{
		pdf:       pdf,
		contentW:  pageWidth - 40,
		pageWidth: pageWidth,
	}
}

// titleBanner draws the dark cover band with the brand mark.
func (b *builder) titleBanner() {
	pdf := b.pdf
	pdf.AddPage()

	pdf.SetFillColor(darkBg[0], darkBg[1], darkBg[2])
	pdf.Rect(0, 0, b.pageWidth, 80, "F")

	pdf.SetTextColor(primaryGreen[0], primaryGreen[1], primaryGreen[2])
	pdf.SetFont("Helvetica", "B", 32)
	pdf.Text(b.pageWidth/2-pdf.GetStringWidth("ENERGY+")/2, 40, "ENERGY+")

	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Helvetica", "", 16)
	subtitle := "Client Onboarding Report"
	pdf.Text(b.pageWidth/2-pdf.GetStringWidth(subtitle)/2, 55, subtitle)

	pdf.SetTextColor(lightGray[0], lightGray[1], lightGray[2])
	pdf.SetFont("Helvetica", "", 10)
	date := time.Now().Format("January 2, 2006")
	pdf.Text(b.pageWidth/2-pdf.GetStringWidth(date)/2, 65, date)

	pdf.SetY(90)
	pdf.SetTextColor(0, 0, 0)
}

// sectionHeader draws a green band with the section title.
func (b *builder) sectionHeader(title string) {
	pdf := b.pdf
	if pdf.GetY() > 250 {
		pdf.AddPage()
	}

	pdf.Ln(3)
	pdf.SetFillColor(primaryGreen[0], primaryGreen[1], primaryGreen[2])
	pdf.SetTextColor(darkBg[0], darkBg[1], darkBg[2])
	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(b.contentW, 10, "  "+title, "", 1, "L", true, 0, "")
	pdf.Ln(3)
	pdf.SetTextColor(0, 0, 0)
}

// field prints a bold label with a wrapped value underneath.
func (b *builder) field(label, value string) {
	pdf := b.pdf
	if value == "" {
		value = "Not provided"
	}

	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(b.contentW, 5, label+":", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.MultiCell(b.contentW, 5, value, "", "L", false)
	pdf.Ln(2)
}

// teamList prints the members of one team role.
func (b *builder) teamList(title string, members []map[string]any, detailKeys ...string) {
	if len(members) == 0 {
		return
	}

	pdf := b.pdf
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(b.contentW, 5, title+":", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)

	for i, member := range members {
		name := strOr(member, "name", "N/A")
		detail := strOr(member, detailKeys[0], "N/A")
		pdf.CellFormat(b.contentW, 5, fmt.Sprintf("  %d. %s - %s", i+1, name, detail), "", 1, "L", false, 0, "")
		for _, key := range detailKeys[1:] {
			if v := strOr(member, key, ""); v != "" {
				pdf.CellFormat(b.contentW, 5, fmt.Sprintf("      %s: %s", titleCase(key), v), "", 1, "L", false, 0, "")
			}
		}
	}
	pdf.Ln(2)
}

// loginGroup prints the non-empty login/notes pairs of one system group.
func (b *builder) loginGroup(title string, sec onboarding.Section, names ...string) {
	var filled []string
	for _, name := range names {
		if str(sec, "login_"+name) != "" || str(sec, "notes_"+name) != "" {
			filled = append(filled, name)
		}
	}
	if len(filled) == 0 {
		return
	}

	pdf := b.pdf
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(b.contentW, 6, title+":", "", 1, "L", false, 0, "")

	for _, name := range filled {
		label := titleCase(strings.ReplaceAll(name, "_", " "))
		if login := str(sec, "login_"+name); login != "" {
			b.field("Login "+label, login)
		}
		if notes := str(sec, "notes_"+name); notes != "" {
			b.field("Notes "+label, notes)
		}
	}
}

// customSystems prints the operator-added systems table.
func (b *builder) customSystems(systems []map[string]any) {
	if len(systems) == 0 {
		return
	}

	pdf := b.pdf
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(b.contentW, 6, "Additional Systems:", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)

	for i, system := range systems {
		pdf.CellFormat(b.contentW, 5, fmt.Sprintf("  %d. %s", i+1, strOr(system, "name", "N/A")), "", 1, "L", false, 0, "")
		if access := strOr(system, "login", ""); access != "" {
			pdf.MultiCell(b.contentW, 5, "      Access: "+access, "", "L", false)
		}
		if notes := strOr(system, "notes", ""); notes != "" {
			pdf.MultiCell(b.contentW, 5, "      Notes: "+notes, "", "L", false)
		}
	}
	pdf.Ln(2)
}

func (b *builder) output() ([]byte, error) {
	var buf bytes.Buffer
	if err := b.pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

func str(sec onboarding.Section, key string) string {
	v, _ := sec[key].(string)
	return v
}

func strOr(m map[string]any, key, fallback string) string {
	if v, ok := m[key].(string); ok && v != "" {
		return v
	}
	return fallback
}

// list joins a multi-select field's values for display.
func list(sec onboarding.Section, key string) string {
	items, ok := sec[key].([]any)
	if !ok || len(items) == 0 {
		return ""
	}
	parts := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok && s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, ", ")
}

// rows extracts a repeating-row field's entries.
func rows(sec onboarding.Section, key string) []map[string]any {
	items, ok := sec[key].([]any)
	if !ok {
		return nil
	}
	out := make([]map[string]any, 0, len(items))
	for _, item := range items {
		if m, ok := item.(map[string]any); ok {
			out = append(out, m)
		}
	}
	return out
}
