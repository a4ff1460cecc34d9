package resolver

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/petrodeal/docgen-cli/internal/model"
)

// syntheticTier fabricates plausible trade-document values for placeholders
// no data-backed tier could fill. Values look realistic but are invented;
// the resolution is tagged so downstream consumers never mistake them for
// entity data.
type syntheticTier struct {
	rng     *rand.Rand
	printer *message.Printer
	now     func() time.Time
}

// NewSyntheticTier returns the last-resort tier. A fixed seed makes output
// reproducible for tests; pass 0 for time-based seeding.
func NewSyntheticTier(seed int64) Tier {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &syntheticTier{
		rng:     rand.New(rand.NewPCG(uint64(seed), uint64(seed)>>1)),
		printer: message.NewPrinter(language.English),
		now:     time.Now,
	}
}

func (*syntheticTier) Name() model.ResolutionTier { return model.TierSynthetic }

func (t *syntheticTier) Resolve(ctx context.Context, req *Request, pending []string) (map[string]model.Resolution, error) {
	out := make(map[string]model.Resolution, len(pending))
	for _, p := range pending {
		out[p] = model.Resolution{
			Placeholder: p,
			Value:       t.generate(p),
			Tier:        model.TierSynthetic,
			Note:        "fabricated value, no matching data",
		}
	}
	return out, nil
}

var (
	syntheticCompanies = []string{
		"Maritime Trading Ltd", "Ocean Commerce Inc", "Global Shipping Co",
		"Sea Trade Corp", "Marine Solutions Ltd",
	}
	syntheticAddresses = []string{
		"123 Harbor St, Singapore 018956", "456 Port Ave, Rotterdam 3011",
		"789 Marine Dr, Dubai 12345", "321 Ocean Blvd, Houston TX 77002",
	}
)

// generate picks a value by keyword category, mirroring the vocabulary of
// real trade paperwork. Categories are checked most-specific first.
func (t *syntheticTier) generate(placeholder string) string {
	key := model.NormalizeKey(placeholder)

	switch {
	case strings.Contains(key, "company"), strings.Contains(key, "seller"), strings.Contains(key, "buyer"):
		return syntheticCompanies[t.rng.IntN(len(syntheticCompanies))]
	case strings.Contains(key, "address"):
		return syntheticAddresses[t.rng.IntN(len(syntheticAddresses))]
	case strings.Contains(key, "quantity"), strings.Contains(key, "weight"), strings.Contains(key, "capacity"):
		return t.printer.Sprintf("%d MT", t.rng.IntN(900_000)+100_000)
	case strings.Contains(key, "price"), strings.Contains(key, "unit"):
		return fmt.Sprintf("$%.2f", t.rng.Float64()*100+50)
	case strings.Contains(key, "amount"), strings.Contains(key, "total"):
		return t.printer.Sprintf("$%d", t.rng.IntN(5_000_000)+500_000)
	case strings.Contains(key, "invoice"), strings.Contains(key, "document"), strings.Contains(key, "reference"), strings.Contains(key, "contract"):
		return fmt.Sprintf("DOC-%d", t.rng.IntN(900_000)+100_000)
	case strings.Contains(key, "notary"):
		return fmt.Sprintf("NOT-%d", t.rng.IntN(90_000)+10_000)
	case strings.Contains(key, "number"):
		return fmt.Sprintf("%d", t.rng.IntN(900_000)+100_000)
	case strings.Contains(key, "apigravity"):
		return fmt.Sprintf("%.1f° API", t.rng.Float64()*20+25)
	case strings.Contains(key, "specificgravity"):
		return fmt.Sprintf("%.3f", t.rng.Float64()*0.15+0.82)
	case strings.Contains(key, "density"):
		return fmt.Sprintf("%.0f kg/m3", t.rng.Float64()*150+820)
	case strings.Contains(key, "sulfur"), strings.Contains(key, "sulphur"):
		return fmt.Sprintf("%.2f%% m/m", t.rng.Float64()*0.48+0.02)
	case strings.Contains(key, "flashpoint"):
		return fmt.Sprintf("%d°C", t.rng.IntN(20)+60)
	case strings.Contains(key, "pourpoint"):
		return fmt.Sprintf("%d°C", t.rng.IntN(40)-20)
	case strings.Contains(key, "viscosity"):
		return fmt.Sprintf("%.1f cSt", t.rng.Float64()*180+20)
	case strings.Contains(key, "cetane"):
		return fmt.Sprintf("%.0f", t.rng.Float64()*20+45)
	case strings.Contains(key, "octane"):
		return fmt.Sprintf("%.0f", t.rng.Float64()*10+87)
	case strings.Contains(key, "water"):
		return fmt.Sprintf("%.3f%% v/v", t.rng.Float64()*0.048+0.002)
	case strings.Contains(key, "calorific"):
		return fmt.Sprintf("%.1f MJ/kg", t.rng.Float64()*2+42)
	case strings.Contains(key, "specification"):
		return "Marine Fuel Oil Specification MARPOL Annex VI"
	case strings.Contains(key, "date"):
		return t.now().UTC().Format("2006-01-02")
	case strings.Contains(key, "email"):
		return "operations@maritimetrading.example"
	case strings.Contains(key, "phone"), strings.Contains(key, "tel"):
		return "+65 6555 0142"
	case strings.Contains(key, "port"):
		return "Port of Rotterdam"
	case strings.Contains(key, "vessel"), strings.Contains(key, "ship"):
		return "MT Horizon Star"
	// "name" last among the keywords so vessel/port/company names keep their
	// own categories.
	case strings.Contains(key, "name"):
		return syntheticCompanies[t.rng.IntN(len(syntheticCompanies))]
	}
	return fmt.Sprintf("[Generated: %s]", placeholder)
}
