package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAttributeBag_FirstWriterWins(t *testing.T) {
	bag := NewAttributeBag()
	bag.Set("vessel_name", "MT Atlas")
	bag.Set("vessel_name", "MT Zephyr")
	v, ok := bag.Get("vessel_name")
	assert.True(t, ok)
	assert.Equal(t, "MT Atlas", v)
	assert.Equal(t, 1, bag.Len())
}

func TestAttributeBag_SkipsEmpty(t *testing.T) {
	bag := NewAttributeBag()
	bag.Set("vessel_flag", "")
	_, ok := bag.Get("vessel_flag")
	assert.False(t, ok)
	assert.Equal(t, 0, bag.Len())
}

func TestAttributeBag_InsertionOrder(t *testing.T) {
	bag := NewAttributeBag()
	bag.Set("b", "2")
	bag.Set("a", "1")
	bag.Set("c", "3")
	assert.Equal(t, []string{"b", "a", "c"}, bag.Fields())
}

func TestAttributeBag_ContextFields(t *testing.T) {
	bag := NewAttributeBag()
	now := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	bag.ContextFields(now)

	date, _ := bag.Get("current_date")
	assert.Equal(t, "2026-03-14", date)
	year, _ := bag.Get("current_year")
	assert.Equal(t, "2026", year)
	month, _ := bag.Get("current_month")
	assert.Equal(t, "03", month)
}

func TestEntityRef_Namespace(t *testing.T) {
	assert.Equal(t, "vessel", EntityRef{Kind: KindVessel}.Namespace())
	assert.Equal(t, "buyer", EntityRef{Kind: KindCompany, Role: RoleBuyer}.Namespace())
	assert.Equal(t, "seller", EntityRef{Kind: KindCompany, Role: RoleSeller}.Namespace())
	assert.Equal(t, "company", EntityRef{Kind: KindCompany}.Namespace())
}

func TestGenerateRequest_Refs(t *testing.T) {
	vid, bid, sid := int64(7), int64(11), int64(11)
	req := GenerateRequest{VesselID: &vid, BuyerID: &bid, SellerID: &sid}
	refs := req.Refs()
	assert.Len(t, refs, 3)
	assert.Equal(t, EntityRef{Kind: KindVessel, ID: 7}, refs[0])
	assert.Equal(t, RoleBuyer, refs[1].Role)
	assert.Equal(t, RoleSeller, refs[2].Role)
}
