package domain

// Settings is the customization document persisted on the hub
// (GET/PUT /api/studio_panel/settings). It is the single source of
// truth for the overlay across sessions; the in-memory mirror is a
// cache reconciled on load and flushed whole on every change.
type Settings struct {
	HubURL           string            `json:"hub_url"`
	Token            string            `json:"token"`
	Hidden           []string          `json:"hidden"`
	Names            map[string]string `json:"names"`
	Categories       map[string]string `json:"categories"`
	Order            []string          `json:"order"`
	CustomCategories []string          `json:"custom_categories"`
	PasswordHash     string            `json:"password_hash"`
}

func NewSettings() Settings {
	return Settings{
		Names:      map[string]string{},
		Categories: map[string]string{},
	}
}

// Normalize fills nil maps after JSON decoding so callers can index
// without checking.
func (s *Settings) Normalize() {
	if s.Names == nil {
		s.Names = map[string]string{}
	}
	if s.Categories == nil {
		s.Categories = map[string]string{}
	}
}

func (s Settings) IsHidden(id string) bool {
	for _, h := range s.Hidden {
		if h == id {
			return true
		}
	}
	return false
}

// Clone deep-copies the document so a flush payload cannot be mutated
// by edits arriving while the write is in flight.
func (s Settings) Clone() Settings {
	out := s
	out.Hidden = append([]string(nil), s.Hidden...)
	out.Order = append([]string(nil), s.Order...)
	out.CustomCategories = append([]string(nil), s.CustomCategories...)
	out.Names = make(map[string]string, len(s.Names))
	for k, v := range s.Names {
		out.Names[k] = v
	}
	out.Categories = make(map[string]string, len(s.Categories))
	for k, v := range s.Categories {
		out.Categories[k] = v
	}
	return out
}
