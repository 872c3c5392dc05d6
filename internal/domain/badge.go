package domain

// Badge identifiers. Badges are permanent: once on a profile they are never
// revoked.
const (
	BadgeCenturyClub      = "CENTURY_CLUB"
	BadgeQualityExpert    = "QUALITY_EXPERT"
	BadgeQuickResolver    = "QUICK_RESOLVER"
	BadgeCustomerChampion = "CUSTOMER_CHAMPION"
)

// Badge describes a catalog entry. Threshold meaning depends on the badge:
// resolution count for volume badges, supporting count for rating badges.
type Badge struct {
	ID          string
	Label       string
	Description string
	Threshold   int
}

// BadgeCatalog is the static badge catalog. Order matters: it is the award
// order when several thresholds are crossed by one event.
var BadgeCatalog = []Badge{
	{ID: BadgeCenturyClub, Label: "Century Club", Description: "Resolved 100 complaints", Threshold: 100},
	{ID: BadgeQualityExpert, Label: "Quality Expert", Description: "Maintained 4.5+ average rating", Threshold: 10},
	{ID: BadgeQuickResolver, Label: "Quick Resolver", Description: "Resolved 25 complaints", Threshold: 25},
	{ID: BadgeCustomerChampion, Label: "Customer Champion", Description: "Maintained 4.8+ average rating", Threshold: 20},
}
