package service

import (
	"sort"

	"studiopanel/internal/core/domain"
)

// Default categories, in display order. Devices without an explicit
// category override land in one of these based on their domain prefix.
var DefaultCategories = []string{"Lights", "Switches", "Climate", "Media", "Sensors", "Other"}

var domainCategories = map[string]string{
	"light":         "Lights",
	"switch":        "Switches",
	"climate":       "Climate",
	"media_player":  "Media",
	"sensor":        "Sensors",
	"binary_sensor": "Sensors",
}

func defaultCategory(dev domain.Device) string {
	if cat, ok := domainCategories[dev.Domain()]; ok {
		return cat
	}
	return "Other"
}

// OrderIndex maps entity id to its position in the explicit order.
func OrderIndex(order []string) map[string]int {
	idx := make(map[string]int, len(order))
	for i, id := range order {
		if _, seen := idx[id]; !seen {
			idx[id] = i
		}
	}
	return idx
}

// SortDevices orders devices by their position in the order sequence.
// Devices absent from the sequence sort after all present ones, by
// entity id, so the result does not depend on snapshot array order.
func SortDevices(devices []domain.Device, order []string) []domain.Device {
	idx := OrderIndex(order)
	out := append([]domain.Device(nil), devices...)
	sort.SliceStable(out, func(i, j int) bool {
		pi, iOK := idx[out[i].ID]
		pj, jOK := idx[out[j].ID]
		switch {
		case iOK && jOK:
			return pi < pj
		case iOK:
			return true
		case jOK:
			return false
		default:
			return out[i].ID < out[j].ID
		}
	})
	return out
}

// AppendNew extends the order sequence with ids discovered by a poll,
// in snapshot order. Known ids keep their position; nothing is ever
// inserted mid-list, which keeps ordering stable across refreshes.
func AppendNew(order []string, devices []domain.Device) []string {
	idx := OrderIndex(order)
	out := order
	for _, d := range devices {
		if _, known := idx[d.ID]; !known {
			out = append(out, d.ID)
			idx[d.ID] = len(out) - 1
		}
	}
	return out
}

// Resolve computes the user-visible render model from the remote device
// set and the customization overlay. Pure derivation, recomputed on
// demand.
func Resolve(devices []domain.Device, s domain.Settings) domain.RenderModel {
	sorted := SortDevices(devices, s.Order)

	all := make([]domain.DeviceView, 0, len(sorted))
	visible := make([]domain.DeviceView, 0, len(sorted))
	for _, dev := range sorted {
		view := domain.DeviceView{
			Device:   dev,
			Name:     dev.FriendlyName(),
			Category: defaultCategory(dev),
			Hidden:   s.IsHidden(dev.ID),
		}
		if dev.Domain() == "light" {
			view.SupportsColor = SupportsColor(dev.Attributes)
			view.SupportsColorTemp = SupportsColorTemp(dev.Attributes)
		}
		if name, ok := s.Names[dev.ID]; ok && name != "" {
			view.Name = name
		}
		if cat, ok := s.Categories[dev.ID]; ok && cat != "" {
			view.Category = cat
		}
		all = append(all, view)
		if !view.Hidden {
			visible = append(visible, view)
		}
	}

	return domain.RenderModel{
		Visible:    visible,
		All:        all,
		Categories: categoryList(s),
	}
}

// categoryList is defaults, then custom categories, then any category
// actually used in an override, deduplicated.
func categoryList(s domain.Settings) []string {
	seen := make(map[string]bool, len(DefaultCategories))
	out := make([]string, 0, len(DefaultCategories)+len(s.CustomCategories))
	add := func(cat string) {
		if cat != "" && !seen[cat] {
			seen[cat] = true
			out = append(out, cat)
		}
	}
	for _, cat := range DefaultCategories {
		add(cat)
	}
	for _, cat := range s.CustomCategories {
		add(cat)
	}
	used := make([]string, 0, len(s.Categories))
	for _, cat := range s.Categories {
		used = append(used, cat)
	}
	sort.Strings(used)
	for _, cat := range used {
		add(cat)
	}
	return out
}
