// Package collect assembles the attribute bag for a generation request by
// fetching the referenced entities and projecting them onto canonical fields.
package collect

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/petrodeal/docgen-cli/internal/model"
	"github.com/petrodeal/docgen-cli/internal/store"
)

// Collector fetches entities and flattens them into namespaced fields.
type Collector struct {
	store store.Store
}

// New returns a Collector backed by the given store.
func New(s store.Store) *Collector {
	return &Collector{store: s}
}

// field is one projected key/value pair in publish order.
type field struct {
	key   string
	value string
}

// Collect fetches all referenced entities in parallel and projects them into
// an attribute bag. A missing or unfetchable entity degrades to a warning and
// its fields are simply absent; one entity failing never discards the others.
// Fetch order never affects the bag because projection happens sequentially in
// reference order after all fetches complete. Context fields (current date and
// time) are always published last.
func (c *Collector) Collect(ctx context.Context, refs []model.EntityRef, now time.Time) (*model.AttributeBag, []string, error) {
	projected := make([][]field, len(refs))
	warnings := make([]string, 0)
	warnCh := make(chan string, len(refs))

	g, gctx := errgroup.WithContext(ctx)
	for i, ref := range refs {
		g.Go(func() error {
			fields, err := c.fetch(gctx, ref)
			if err != nil {
				if errors.Is(err, model.ErrEntityNotFound) {
					warnCh <- fmt.Sprintf("%s %d not found", ref.Kind, ref.ID)
				} else {
					warnCh <- fmt.Sprintf("%s %d fetch failed: %s", ref.Kind, ref.ID, err)
				}
				return nil
			}
			projected[i] = fields
			return nil
		})
	}
	_ = g.Wait()
	close(warnCh)
	for w := range warnCh {
		warnings = append(warnings, w)
		zap.L().Warn("entity collection degraded", zap.String("warning", w))
	}

	bag := model.NewAttributeBag()
	for _, fields := range projected {
		for _, f := range fields {
			bag.Set(f.key, f.value)
		}
	}
	bag.ContextFields(now)
	return bag, warnings, nil
}

func (c *Collector) fetch(ctx context.Context, ref model.EntityRef) ([]field, error) {
	ns := ref.Namespace()
	switch ref.Kind {
	case model.KindVessel:
		v, err := c.store.GetVessel(ctx, ref.ID)
		if err != nil {
			return nil, err
		}
		return projectVessel(ns, v), nil
	case model.KindPort:
		p, err := c.store.GetPort(ctx, ref.ID)
		if err != nil {
			return nil, err
		}
		return projectPort(ns, p), nil
	case model.KindRefinery:
		r, err := c.store.GetRefinery(ctx, ref.ID)
		if err != nil {
			return nil, err
		}
		return projectRefinery(ns, r), nil
	case model.KindCompany:
		co, err := c.store.GetCompany(ctx, ref.ID)
		if err != nil {
			return nil, err
		}
		return projectCompany(ns, co), nil
	}
	return nil, fmt.Errorf("collect: unknown entity kind %q", ref.Kind)
}

func projectVessel(ns string, v *model.Vessel) []field {
	return compact([]field{
		{ns + "_name", v.Name},
		{ns + "_imo", v.IMO},
		{"imo_number", v.IMO},
		{ns + "_mmsi", v.MMSI},
		{ns + "_callsign", v.Callsign},
		{ns + "_flag", v.Flag},
		{ns + "_type", v.Type},
		{ns + "_built", intStr(v.Built)},
		{ns + "_deadweight", int64Str(v.Deadweight)},
		{ns + "_length", floatStr(v.Length)},
		{ns + "_width", floatStr(v.Width)},
		{ns + "_draught", floatStr(v.Draught)},
		{ns + "_gross_tonnage", int64Str(v.GrossTonnage)},
		{ns + "_cargo_capacity", int64Str(v.CargoCapacity)},
		{ns + "_owner", v.OwnerName},
		{ns + "_operator", v.OperatorName},
		{ns + "_destination", v.Destination},
	})
}

func projectPort(ns string, p *model.Port) []field {
	return compact([]field{
		{ns + "_name", p.Name},
		{ns + "_country", p.Country},
		{ns + "_city", p.City},
		{ns + "_region", p.Region},
		{ns + "_type", p.Type},
		{ns + "_authority", p.Authority},
		{ns + "_capacity", int64Str(p.Capacity)},
		{ns + "_max_draught", floatStr(p.MaxDraught)},
		{ns + "_berth_count", intStr(p.BerthCount)},
		{ns + "_email", p.Email},
		{ns + "_phone", p.Phone},
		{ns + "_address", p.Address},
	})
}

func projectRefinery(ns string, r *model.Refinery) []field {
	return compact([]field{
		{ns + "_name", r.Name},
		{ns + "_country", r.Country},
		{ns + "_city", r.City},
		{ns + "_region", r.Region},
		{ns + "_type", r.Type},
		{ns + "_operator", r.Operator},
		{ns + "_owner", r.Owner},
		{ns + "_processing_capacity", int64Str(r.ProcessingCapacity)},
		{ns + "_storage_capacity", int64Str(r.StorageCapacity)},
		{ns + "_year_built", intStr(r.YearBuilt)},
		{ns + "_products", r.Products},
	})
}

func projectCompany(ns string, c *model.Company) []field {
	return compact([]field{
		{ns + "_name", c.Name},
		{ns + "_company", c.Name},
		{ns + "_trade_name", c.TradeName},
		{ns + "_country", c.Country},
		{ns + "_city", c.City},
		{ns + "_address", c.Address},
		{ns + "_email", c.Email},
		{ns + "_phone", c.Phone},
		{ns + "_website", c.Website},
		{ns + "_registration_number", c.RegistrationNumber},
		{ns + "_representative", c.RepresentativeName},
		{ns + "_industry", c.Industry},
		{ns + "_founded_year", intStr(c.FoundedYear)},
		{ns + "_employees", intStr(c.EmployeesCount)},
	})
}

// compact drops empty values so they never occupy a bag slot.
func compact(fields []field) []field {
	out := fields[:0]
	for _, f := range fields {
		if f.value != "" {
			out = append(out, f)
		}
	}
	return out
}

func intStr(v int) string {
	if v == 0 {
		return ""
	}
	return strconv.Itoa(v)
}

func int64Str(v int64) string {
	if v == 0 {
		return ""
	}
	return strconv.FormatInt(v, 10)
}

func floatStr(v float64) string {
	if v == 0 {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
