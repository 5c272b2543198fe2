package quotas

import (
	"sort"
	"time"

	"github.com/miguelfer1410/cdp-sub001/families"
	"github.com/miguelfer1410/cdp-sub001/store"
)

const (
	DiscountSibling         = "sibling"
	DiscountSecondSport     = "second_sport"
	DiscountParentExemption = "parent_member_exemption"

	adultAge = 18
)

// EnrollmentFact is one active enrollment plus the sport fee schedule it is
// billed under.
type EnrollmentFact struct {
	SportName       string
	Escalao         string
	Schedule        store.Sport
	InscriptionPaid bool
}

type LineItem struct {
	Label         string  `json:"label"`
	Amount        float64 `json:"amount"`
	QuotaIncluded bool    `json:"quotaIncluded"`
	IsDiscount    bool    `json:"isDiscount"`
}

// InscriptionLine is informational only, it is never part of the total.
type InscriptionLine struct {
	SportName string  `json:"sportName"`
	Escalao   string  `json:"escalao,omitempty"`
	Paid      bool    `json:"paid"`
	Fee       float64 `json:"feeDiscount"`
}

type Quote struct {
	Total            float64           `json:"total"`
	Breakdown        []LineItem        `json:"breakdown"`
	DiscountsApplied []string          `json:"discountsApplied"`
	Inscriptions     []InscriptionLine `json:"inscriptionInfo"`
}

// Compute itemizes the monthly amount a member owes. It is pure: no I/O, no
// side effects, and it never fails. Defective inputs are normalized so a
// billing read always produces an answer.
func Compute(member store.Member, facts families.FamilyFacts, enrollments []EnrollmentFact, adultFee, minorFee float64, today time.Time) Quote {
	quote := Quote{
		Breakdown:        []LineItem{},
		DiscountsApplied: []string{},
		Inscriptions:     []InscriptionLine{},
	}

	minor := isMinor(member.BirthDate, today)

	// The most expensive sport keeps its full price: the second-sport
	// discount must land on the cheaper enrollments, so order descending by
	// the non-discounted fee. Ties keep input order.
	sorted := append([]EnrollmentFact{}, enrollments...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return normalFee(sorted[i]) > normalFee(sorted[j])
	})

	bundled := false
	for i, enrollment := range sorted {
		applyDiscount := facts.SiblingsWithActiveEnrollment || i > 0

		fee := normalFee(enrollment)
		discounted := false
		if applyDiscount && enrollment.Schedule.FeeDiscount > 0 {
			fee = enrollment.Schedule.FeeDiscount
			discounted = true
			if facts.SiblingsWithActiveEnrollment {
				quote.DiscountsApplied = addTag(quote.DiscountsApplied, DiscountSibling)
			}
			if i > 0 {
				quote.DiscountsApplied = addTag(quote.DiscountsApplied, DiscountSecondSport)
			}
		}

		label := enrollment.SportName
		if enrollment.Escalao != "" {
			label += " — " + enrollment.Escalao
		}

		item := LineItem{Amount: fee, IsDiscount: discounted}
		// Escalão 1 always pays the generic fee separately, even under a
		// bundling sport.
		if enrollment.Schedule.QuotaIncluded && !bundled && !facts.ExemptFromGlobalFee && enrollment.Escalao != store.ESCALAO_1 {
			bundled = true
			item.QuotaIncluded = true
			item.Label = label + " (quota incluída)"
		} else if fee == 0 {
			item.Label = label + " (isento)"
		} else {
			item.Label = label
		}

		quote.Breakdown = append(quote.Breakdown, item)
		quote.Total += fee
	}

	if facts.ExemptFromGlobalFee {
		quote.Breakdown = append(quote.Breakdown, LineItem{Label: "Quota de Sócio (isenta)", Amount: 0})
		quote.DiscountsApplied = addTag(quote.DiscountsApplied, DiscountParentExemption)
	} else if !bundled {
		fee := adultFee
		if minor && minorFee > 0 {
			fee = minorFee
		}
		quote.Breakdown = append(quote.Breakdown, LineItem{Label: "Quota de Sócio", Amount: fee})
		quote.Total += fee
	}

	for _, enrollment := range enrollments {
		fee := enrollment.Schedule.InscriptionFeeNormal
		if facts.SiblingsWithActiveEnrollment {
			fee = enrollment.Schedule.InscriptionFeeDiscount
		}
		quote.Inscriptions = append(quote.Inscriptions, InscriptionLine{
			SportName: enrollment.SportName,
			Escalao:   enrollment.Escalao,
			Paid:      enrollment.InscriptionPaid,
			Fee:       fee,
		})
	}

	if quote.Total < 0 {
		quote.Total = 0
	}
	return quote
}

func normalFee(enrollment EnrollmentFact) float64 {
	switch enrollment.Escalao {
	case store.ESCALAO_1:
		return enrollment.Schedule.FeeEscalao1Normal
	case store.ESCALAO_2:
		return enrollment.Schedule.FeeEscalao2Normal
	default:
		return enrollment.Schedule.MonthlyFee
	}
}

func isMinor(birthDate time.Time, today time.Time) bool {
	if birthDate.IsZero() {
		return false
	}
	age := today.Year() - birthDate.Year()
	if today.Month() < birthDate.Month() ||
		(today.Month() == birthDate.Month() && today.Day() < birthDate.Day()) {
		age--
	}
	return age < adultAge
}

func addTag(tags []string, tag string) []string {
	for _, t := range tags {
		if t == tag {
			return tags
		}
	}
	return append(tags, tag)
}
