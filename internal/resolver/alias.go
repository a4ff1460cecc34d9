package resolver

import (
	"context"

	"github.com/petrodeal/docgen-cli/internal/model"
)

// staticAliases maps normalized placeholder spellings to canonical fields.
// These cover the placeholder vocabulary seen across maritime trade
// templates; per-template aliases learned through review override them.
var staticAliases = map[string]string{
	// vessel identification
	"vesselname": "vessel_name",
	"shipname":   "vessel_name",
	"vessel":     "vessel_name",
	"imonumber":  "imo_number",
	"imo":        "imo_number",
	"mmsi":       "vessel_mmsi",
	"callsign":   "vessel_callsign",
	"flagstate":  "vessel_flag",
	"flag":       "vessel_flag",
	"vesseltype": "vessel_type",

	// vessel particulars
	"yearbuilt":      "vessel_built",
	"built":          "vessel_built",
	"deadweight":     "vessel_deadweight",
	"dwt":            "vessel_deadweight",
	"lengthoverall":  "vessel_length",
	"loa":            "vessel_length",
	"beam":           "vessel_width",
	"draft":          "vessel_draught",
	"draught":        "vessel_draught",
	"grosstonnage":   "vessel_gross_tonnage",
	"cargocapacity":  "vessel_cargo_capacity",
	"vesselowner":    "vessel_owner",
	"owner":          "vessel_owner",
	"vesseloperator": "vessel_operator",
	"operator":       "vessel_operator",

	// ports
	"portname":      "port_name",
	"port":          "port_name",
	"loadingport":   "port_name",
	"portofloading": "port_name",
	"portcountry":   "port_country",
	"portauthority": "port_authority",

	// parties
	"buyer":                "buyer_company",
	"buyername":            "buyer_company",
	"buyercompany":         "buyer_company",
	"buyeraddress":         "buyer_address",
	"buyeremail":           "buyer_email",
	"buyerrepresentative":  "buyer_representative",
	"seller":               "seller_company",
	"sellername":           "seller_company",
	"sellercompany":        "seller_company",
	"selleraddress":        "seller_address",
	"selleremail":          "seller_email",
	"sellerrepresentative": "seller_representative",
	"companyname":          "company_name",

	// refineries
	"refinery":         "refinery_name",
	"refineryname":     "refinery_name",
	"refinerycountry":  "refinery_country",
	"refineryoperator": "refinery_operator",

	// document context
	"date":      "current_date",
	"issuedate": "current_date",
	"today":     "current_date",
	"year":      "current_year",
}

// aliasTier resolves through the merged alias table with full confidence.
type aliasTier struct{}

// NewAliasTier returns the first-priority tier.
func NewAliasTier() Tier { return aliasTier{} }

func (aliasTier) Name() model.ResolutionTier { return model.TierAlias }

// Resolve maps each pending placeholder through the template's learned
// aliases, then the static table. An alias only settles the placeholder when
// the bag actually holds the target field; a dangling alias falls through so
// later tiers get their chance.
func (aliasTier) Resolve(ctx context.Context, req *Request, pending []string) (map[string]model.Resolution, error) {
	out := make(map[string]model.Resolution)
	for _, p := range pending {
		key := model.NormalizeKey(p)

		field, ok := req.Template.FieldMappings[key]
		if !ok {
			field, ok = staticAliases[key]
		}
		if !ok {
			continue
		}
		value, ok := req.Bag.Get(field)
		if !ok {
			continue
		}
		out[p] = model.Resolution{
			Placeholder: p,
			Value:       value,
			Field:       field,
			Tier:        model.TierAlias,
			Confidence:  100,
		}
	}
	return out, nil
}
