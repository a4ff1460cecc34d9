package model

import "time"

// EntityKind enumerates the record types the collector can fetch.
type EntityKind string

const (
	KindVessel   EntityKind = "vessel"
	KindPort     EntityKind = "port"
	KindRefinery EntityKind = "refinery"
	KindCompany  EntityKind = "company"
)

// EntityRole tags how a fetched entity participates in the document. A
// company fetched as the buyer publishes buyer_* fields; the same company
// fetched as the seller publishes seller_*. The role travels with the
// reference so namespacing never depends on fetch order.
type EntityRole string

const (
	RoleNeutral EntityRole = ""
	RoleBuyer   EntityRole = "buyer"
	RoleSeller  EntityRole = "seller"
)

// EntityRef identifies one entity to collect.
type EntityRef struct {
	Kind EntityKind `json:"kind"`
	Role EntityRole `json:"role,omitempty"`
	ID   int64      `json:"id"`
}

// Namespace returns the canonical field prefix for this reference.
func (r EntityRef) Namespace() string {
	if r.Role != RoleNeutral {
		return string(r.Role)
	}
	return string(r.Kind)
}

// Vessel mirrors the vessels table's conventional columns.
type Vessel struct {
	ID            int64   `json:"id"`
	Name          string  `json:"name"`
	IMO           string  `json:"imo"`
	MMSI          string  `json:"mmsi"`
	Callsign      string  `json:"callsign"`
	Flag          string  `json:"flag"`
	Type          string  `json:"vessel_type"`
	Built         int     `json:"built"`
	Deadweight    int64   `json:"deadweight"`
	Length        float64 `json:"length"`
	Width         float64 `json:"width"`
	Draught       float64 `json:"draught"`
	GrossTonnage  int64   `json:"gross_tonnage"`
	CargoCapacity int64   `json:"cargo_capacity"`
	OwnerName     string  `json:"owner_name"`
	OperatorName  string  `json:"operator_name"`
	Destination   string  `json:"destination"`
}

// Port mirrors the ports table.
type Port struct {
	ID         int64   `json:"id"`
	Name       string  `json:"name"`
	Country    string  `json:"country"`
	City       string  `json:"city"`
	Region     string  `json:"region"`
	Type       string  `json:"port_type"`
	Authority  string  `json:"port_authority"`
	Capacity   int64   `json:"capacity"`
	MaxDraught float64 `json:"max_draught"`
	BerthCount int     `json:"berth_count"`
	Email      string  `json:"email"`
	Phone      string  `json:"phone"`
	Address    string  `json:"address"`
}

// Refinery mirrors the refineries table.
type Refinery struct {
	ID                 int64  `json:"id"`
	Name               string `json:"name"`
	Country            string `json:"country"`
	City               string `json:"city"`
	Region             string `json:"region"`
	Type               string `json:"refinery_type"`
	Operator           string `json:"operator"`
	Owner              string `json:"owner"`
	ProcessingCapacity int64  `json:"processing_capacity"`
	StorageCapacity    int64  `json:"storage_capacity"`
	YearBuilt          int    `json:"year_built"`
	Products           string `json:"products"`
}

// Company mirrors the companies table. Used for both buyer and seller roles.
type Company struct {
	ID                 int64  `json:"id"`
	Name               string `json:"name"`
	TradeName          string `json:"trade_name"`
	Country            string `json:"country"`
	City               string `json:"city"`
	Address            string `json:"address"`
	Email              string `json:"email"`
	Phone              string `json:"phone"`
	Website            string `json:"website"`
	RegistrationNumber string `json:"registration_number"`
	RepresentativeName string `json:"representative_name"`
	Industry           string `json:"industry"`
	FoundedYear        int    `json:"founded_year"`
	EmployeesCount     int    `json:"employees_count"`
}

// AttributeBag is the flat canonical-field → value mapping assembled per
// generation request. Insert order is retained for deterministic fuzzy-tier
// tie-breaking; the first writer of a key wins.
type AttributeBag struct {
	keys   []string
	values map[string]string
}

// NewAttributeBag returns an empty bag.
func NewAttributeBag() *AttributeBag {
	return &AttributeBag{values: make(map[string]string)}
}

// Set records a field unless it is empty or already present.
func (b *AttributeBag) Set(field, value string) {
	if value == "" {
		return
	}
	if _, ok := b.values[field]; ok {
		return
	}
	b.keys = append(b.keys, field)
	b.values[field] = value
}

// Get returns the value for a canonical field.
func (b *AttributeBag) Get(field string) (string, bool) {
	v, ok := b.values[field]
	return v, ok
}

// Fields returns the canonical field names in insertion order.
func (b *AttributeBag) Fields() []string {
	out := make([]string, len(b.keys))
	copy(out, b.keys)
	return out
}

// Len returns the number of populated fields.
func (b *AttributeBag) Len() int { return len(b.keys) }

// ContextFields publishes the always-available date/time fields into the bag.
func (b *AttributeBag) ContextFields(now time.Time) {
	b.Set("current_date", now.Format("2006-01-02"))
	b.Set("current_time", now.Format("15:04:05"))
	b.Set("current_datetime", now.Format(time.RFC3339))
	b.Set("current_year", now.Format("2006"))
	b.Set("current_month", now.Format("01"))
	b.Set("current_day", now.Format("02"))
}
