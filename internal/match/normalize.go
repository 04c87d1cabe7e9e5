package match

import (
	"strings"

	"github.com/Mabdelmofdy/PMTWIN-sub002/internal/model"
)

// NormalizeOpportunity returns a copy of the opportunity with its matchable
// fields cleaned once: skill lists trimmed and de-blanked, nameless service
// lines dropped, barter offer text trimmed. Downstream scoring code relies
// on this single pass instead of defaulting inline at every use site. The
// input is never mutated.
func NormalizeOpportunity(opp *model.Opportunity) *model.Opportunity {
	if opp == nil {
		return nil
	}
	out := *opp
	attrs := &out.Attributes

	attrs.RequiredSkills = cleanStrings(attrs.RequiredSkills)
	attrs.Skills = cleanStrings(attrs.Skills)
	attrs.ServicesOffered = cleanServices(attrs.ServicesOffered)
	attrs.ServicesRequested = cleanServices(attrs.ServicesRequested)
	attrs.BarterOffer = strings.TrimSpace(attrs.BarterOffer)
	attrs.Location = strings.TrimSpace(attrs.Location)

	return &out
}

// NormalizeProfile cleans a party profile the same way: blank barter
// entries dropped, names trimmed. The input is never mutated.
func NormalizeProfile(p *model.PartyProfile) *model.PartyProfile {
	if p == nil {
		return nil
	}
	out := *p
	out.BarterOffers = cleanRefs(out.BarterOffers)
	out.BarterNeeds = cleanRefs(out.BarterNeeds)
	out.Location = strings.TrimSpace(out.Location)
	return &out
}

func cleanStrings(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func cleanServices(in []model.ServiceItem) []model.ServiceItem {
	if len(in) == 0 {
		return nil
	}
	out := make([]model.ServiceItem, 0, len(in))
	for _, svc := range in {
		svc.Name = strings.TrimSpace(svc.Name)
		svc.Description = strings.TrimSpace(svc.Description)
		if svc.Name == "" && svc.Description == "" {
			continue
		}
		out = append(out, svc)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func cleanRefs(in []model.ServiceRef) []model.ServiceRef {
	if len(in) == 0 {
		return nil
	}
	out := make([]model.ServiceRef, 0, len(in))
	for _, ref := range in {
		ref.Name = strings.TrimSpace(ref.Name)
		if ref.Name == "" && ref.Item == nil {
			continue
		}
		out = append(out, ref)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
