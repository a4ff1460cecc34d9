package model

import "time"

// Encoding names one output format the renderer can emit.
type Encoding string

const (
	EncodingDocx Encoding = "docx" // structured document
	EncodingPDF  Encoding = "pdf"  // portable document
	EncodingHTML Encoding = "html" // print-ready markup
)

// KnownEncoding reports whether e is a supported output encoding.
func KnownEncoding(e Encoding) bool {
	switch e {
	case EncodingDocx, EncodingPDF, EncodingHTML:
		return true
	}
	return false
}

// DocumentStatus is the terminal state of a generation request record.
type DocumentStatus string

const (
	DocumentCompleted DocumentStatus = "completed"
	DocumentPartial   DocumentStatus = "partial" // at least one encoding failed
	DocumentFailed    DocumentStatus = "failed"
)

// GeneratedDocument records a single generation request. Immutable once
// Status is set and CompletedAt stamped.
type GeneratedDocument struct {
	ID          string               `json:"id"`
	TemplateID  string               `json:"template_id"`
	EntityRefs  []EntityRef          `json:"entity_refs"`
	Encodings   []Encoding           `json:"encodings"`
	ByteRefs    map[Encoding]string  `json:"byte_refs"` // encoding → storage reference
	// EncodingErrors reports per-encoding render failures; encodings present
	// in ByteRefs succeeded.
	EncodingErrors map[Encoding]string `json:"encoding_errors,omitempty"`
	Filled         int                 `json:"placeholders_filled"`
	Fallback       int                 `json:"placeholders_fallback"`
	Status         DocumentStatus      `json:"status"`
	CompletedAt    time.Time           `json:"completed_at"`
}

// GenerateRequest is the wire shape of a generation call.
type GenerateRequest struct {
	TemplateID string      `json:"template_id"`
	VesselID   *int64      `json:"vessel_id,omitempty"`
	PortID     *int64      `json:"port_id,omitempty"`
	RefineryID *int64      `json:"refinery_id,omitempty"`
	CompanyID  *int64      `json:"company_id,omitempty"`
	BuyerID    *int64      `json:"buyer_company_id,omitempty"`
	SellerID   *int64      `json:"seller_company_id,omitempty"`
	Encodings  []Encoding  `json:"encodings,omitempty"`
	// UseInference enables the AI tier for this request.
	UseInference bool `json:"use_inference,omitempty"`
}

// Refs expands the optional identifiers into typed entity references with
// their role tags.
func (r GenerateRequest) Refs() []EntityRef {
	var refs []EntityRef
	add := func(id *int64, kind EntityKind, role EntityRole) {
		if id != nil {
			refs = append(refs, EntityRef{Kind: kind, Role: role, ID: *id})
		}
	}
	add(r.VesselID, KindVessel, RoleNeutral)
	add(r.PortID, KindPort, RoleNeutral)
	add(r.RefineryID, KindRefinery, RoleNeutral)
	add(r.CompanyID, KindCompany, RoleNeutral)
	add(r.BuyerID, KindCompany, RoleBuyer)
	add(r.SellerID, KindCompany, RoleSeller)
	return refs
}

// GenerateResponse is returned to callers with enough structure to decide
// whether to accept, review, or regenerate.
type GenerateResponse struct {
	Success     bool                `json:"success"`
	DocumentID  string              `json:"document_id"`
	ByteRefs    map[Encoding]string `json:"byte_refs"`
	Failed      map[Encoding]string `json:"failed_encodings,omitempty"`
	Filled      int                 `json:"placeholders_filled"`
	Fallback    int                 `json:"placeholders_fallback"`
	Resolutions []Resolution        `json:"resolutions"`
	Warnings    []string            `json:"warnings,omitempty"`
}
