package domain

import "time"

// Widget is one card on the analytics dashboard.
type Widget struct {
	ID      string `json:"id" yaml:"id"`
	Visible bool   `json:"visible" yaml:"visible"`
	Column  int    `json:"column" yaml:"column"`
	Order   int    `json:"order" yaml:"order"`
}

// Layout is the persisted dashboard arrangement and theme.
type Layout struct {
	Theme     string    `json:"theme" yaml:"theme"`
	Widgets   []Widget  `json:"widgets" yaml:"widgets"`
	UpdatedAt time.Time `json:"updated_at,omitempty" yaml:"updated_at,omitempty"`
}

// Widget identifiers, one per analytics section.
const (
	WidgetSummary     = "summary"
	WidgetEquityCurve = "underwater"
	WidgetRMultiple   = "r_multiple"
	WidgetByMarket    = "by_market"
	WidgetByExit      = "by_exit_reason"
	WidgetByTag       = "by_tag"
	WidgetMonthly     = "monthly"
	WidgetWeekday     = "weekday"
	WidgetHolding     = "holding_period"
	WidgetExposure    = "open_exposure"
)

// DefaultLayout returns the layout used until the user saves one.
func DefaultLayout() *Layout {
	ids := []string{
		WidgetSummary, WidgetEquityCurve, WidgetRMultiple, WidgetMonthly,
		WidgetByMarket, WidgetByExit, WidgetByTag, WidgetWeekday,
		WidgetHolding, WidgetExposure,
	}
	widgets := make([]Widget, 0, len(ids))
	for i, id := range ids {
		widgets = append(widgets, Widget{ID: id, Visible: true, Column: i % 2, Order: i})
	}
	return &Layout{Theme: "light", Widgets: widgets}
}

// Visible reports whether the widget with the given id is shown.
// Unknown ids are treated as visible.
func (l *Layout) Visible(id string) bool {
	for _, w := range l.Widgets {
		if w.ID == id {
			return w.Visible
		}
	}
	return true
}
