package route

import "strings"

// Entry describes one path of a route table.
type Entry struct {
	ID         string `json:"id"`
	Path       string `json:"path"`
	Title      string `json:"title,omitempty"`
	Component  string `json:"component,omitempty"`
	Viewport   string `json:"viewport,omitempty"`
	RedirectTo string `json:"redirect_to,omitempty"`
}

// Table walks the route configuration ahead of navigation and lists every
// full path pattern. Routes resolved by a navigation strategy cannot be
// walked and yield an EagerResolutionError.
func Table(configs []*Config) ([]Entry, error) {
	var out []Entry
	if err := walkTable(configs, "", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func walkTable(configs []*Config, prefix string, out *[]Entry) error {
	for _, c := range configs {
		if c.Strategy != nil {
			return &EagerResolutionError{RouteID: c.Key()}
		}
		for _, p := range c.Paths() {
			full := joinPattern(prefix, p)
			e := Entry{
				ID:         c.Key(),
				Path:       full,
				Title:      c.Title,
				Viewport:   c.Viewport,
				RedirectTo: c.RedirectTo,
			}
			if c.Component != nil {
				e.Component = c.Component.Name
			}
			*out = append(*out, e)

			if err := walkTable(c.Children, full, out); err != nil {
				return err
			}
		}
	}
	return nil
}

func joinPattern(prefix, p string) string {
	p = strings.Trim(p, "/")
	switch {
	case prefix == "":
		return p
	case p == "":
		return prefix
	default:
		return prefix + "/" + p
	}
}
