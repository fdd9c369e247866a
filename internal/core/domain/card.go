package domain

// Realisation categories reported by the Gin API.
const (
	CategoryBarjas   = "barjas"
	CategoryFisik    = "fisik"
	CategoryAnggaran = "anggaran"
	CategoryKinerja  = "kinerja"
)

// CardItem is one labelled value on a card.
type CardItem struct {
	Label          string `json:"label"`
	Value          string `json:"value"`
	PopoverTitle   string `json:"popover_title,omitempty"`
	PopoverContent string `json:"popover_content,omitempty"`
	Late           int64  `json:"late,omitempty"`
}

// Card is the view model consumed by the realisation card components.
type Card struct {
	Category        string     `json:"category"`
	Title           string     `json:"title"`
	Subtitle        string     `json:"subtitle"`
	HintTitle       string     `json:"hint_title"`
	HintDescription string     `json:"hint_description"`
	Items           []CardItem `json:"items"`
	Progress        string     `json:"progress"`
	Color           string     `json:"color,omitempty"`
	Layout          string     `json:"layout,omitempty"`
}

// CardColors is the colour band chosen from a progress value.
type CardColors struct {
	BgColor    string `json:"bg_color"`
	TextColor  string `json:"text_color"`
	ChartColor string `json:"chart_color"`
}

// ColorsForProgress maps a progress percentage onto the dashboard colour bands.
func ColorsForProgress(progress float64) CardColors {
	switch p := int(progress); {
	case p >= 75:
		return CardColors{BgColor: "primary", TextColor: "text-white", ChartColor: "#028C86"}
	case p >= 50:
		return CardColors{BgColor: "secondary", TextColor: "text-white", ChartColor: "#B1D663"}
	case p >= 25:
		return CardColors{BgColor: "error", TextColor: "text-white", ChartColor: "#EF4444"}
	default:
		return CardColors{BgColor: "dark", TextColor: "text-white", ChartColor: "#6B7280"}
	}
}

// Article is a news item shown on the dashboard.
type Article map[string]any

// RealisationStats summarises budget rows.
type RealisationStats struct {
	TotalBudget           float64 `json:"total_budget"`
	TotalRealisation      float64 `json:"total_realisasi"`
	RealizationPercentage float64 `json:"realization_percentage"`
	Variance              float64 `json:"variance"`
}
