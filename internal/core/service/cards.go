package service

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/sijagur/dashboard-gateway/internal/core/domain"
)

const realisationHint = "Adalah nilai persentase yang menunjukkan jumlah capaian yang sudah tercapai dari sejak awal bulan Januari sampai dengan bulan berjalan.\n" +
	"Realisasi capaian yang dihitung adalah realisasi paket yang sedang berprogres dan paket yang sudah selesai sampai dengan pembayaran SP2D.\n" +
	"Nilai tersebut didapat dari aplikasi (SIRUP, SIBARASAT, SIPDOK & SIPEKAT) yang data tersebut diolah dan dirumuskan sebagai berikut:\n" +
	"(Jumlah paket berprogres + Jumlah paket selesai) / Total paket sampai dengan bulan berjalan"

var categoryLabels = map[string]string{
	domain.CategoryBarjas:   "Barjas",
	domain.CategoryFisik:    "Fisik",
	domain.CategoryAnggaran: "Anggaran",
	domain.CategoryKinerja:  "Kinerja",
}

var barjasStages = []struct{ typ, label string }{
	{"perencanaan", "Perencanaan"},
	{"pemilihan", "Pemilihan"},
	{"pengadaan", "Pengadaan"},
	{"penyerahan", "Penyerahan"},
}

// rawValue is a JSON scalar the Gin API sends either as a number or a string.
type rawValue json.RawMessage

func (v *rawValue) UnmarshalJSON(b []byte) error {
	*v = append((*v)[:0], b...)
	return nil
}

func (v rawValue) String() string {
	b := bytes.TrimSpace(v)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return ""
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		return s
	}
	return string(b)
}

func (v rawValue) Float() float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(v.String()), 64)
	if err != nil {
		return 0
	}
	return f
}

type stageDetail struct {
	Selesai   int64 `json:"selesai"`
	Target    int64 `json:"target"`
	Terlambat int64 `json:"terlambat"`
}

type realisationItem struct {
	Type      string       `json:"type"`
	Value     rawValue     `json:"value"`
	Formatted string       `json:"formatted"`
	Detail    *stageDetail `json:"detail"`
}

func (i realisationItem) display() string {
	if i.Formatted != "" {
		return i.Formatted
	}
	return i.Value.String()
}

type realisationCategory struct {
	Category          string            `json:"category"`
	Progress          rawValue          `json:"progress"`
	ProgressFormatted string            `json:"progress_formatted"`
	Capaian           rawValue          `json:"capaian"`
	Items             []realisationItem `json:"items"`
}

type realisationMeta struct {
	Year      rawValue `json:"year"`
	Month     rawValue `json:"month"`
	MonthName string   `json:"month_name"`
}

type realisationBlock struct {
	Data []realisationCategory `json:"data"`
	Meta realisationMeta       `json:"meta"`
}

// realisationEnvelope accepts the bare Gin response and the results-wrapped one.
type realisationEnvelope struct {
	Results []realisationBlock `json:"results"`
	realisationBlock
}

func parseRealisation(body []byte) (realisationBlock, bool) {
	var env realisationEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return realisationBlock{}, false
	}
	if len(env.Results) > 0 {
		return env.Results[0], env.Results[0].Data != nil
	}
	return env.realisationBlock, env.Data != nil
}

// MonthlyCards turns a /realisasi-bulan payload into cards. Unknown categories
// are dropped; malformed payloads yield no cards.
func MonthlyCards(body []byte) []domain.Card {
	block, ok := parseRealisation(body)
	if !ok {
		return []domain.Card{}
	}
	subtitle := fmt.Sprintf("Januari - %s %s", block.Meta.MonthName, block.Meta.Year)

	cards := make([]domain.Card, 0, len(block.Data))
	for _, c := range block.Data {
		label, known := categoryLabels[c.Category]
		if !known {
			continue
		}
		card := domain.Card{
			Category:        c.Category,
			Title:           "Persentase Capaian Realisasi " + label,
			Subtitle:        subtitle,
			HintTitle:       strings.ToUpper("Persentase Capaian Realisasi " + label),
			HintDescription: realisationHint,
			Progress:        c.ProgressFormatted,
		}
		if c.Category == domain.CategoryBarjas {
			card.Items = stageItems(c.Items)
		} else {
			card.Items = valueItems(c.Items)
		}
		if c.Category == domain.CategoryAnggaran {
			card.Layout = "rows"
		}
		cards = append(cards, card)
	}
	return cards
}

// YearlyCards turns a /realisasi-tahun payload into cards coloured by capaian.
func YearlyCards(body []byte) []domain.Card {
	block, ok := parseRealisation(body)
	if !ok {
		return []domain.Card{}
	}
	subtitle := fmt.Sprintf("per-%s %s", block.Meta.MonthName, block.Meta.Year)

	cards := make([]domain.Card, 0, len(block.Data))
	for _, c := range block.Data {
		label, known := categoryLabels[c.Category]
		if !known {
			continue
		}
		card := domain.Card{
			Category:        c.Category,
			Title:           "Progres Tahunan Capaian " + label,
			Subtitle:        subtitle,
			HintTitle:       strings.ToUpper("Progres Tahunan Capaian " + label),
			HintDescription: realisationHint,
			Items:           valueItems(c.Items),
			Progress:        c.ProgressFormatted,
			Color:           domain.ColorsForProgress(c.Capaian.Float()).BgColor,
		}
		if c.Category == domain.CategoryAnggaran {
			card.Layout = "rows"
		}
		cards = append(cards, card)
	}
	return cards
}

func stageItems(items []realisationItem) []domain.CardItem {
	byType := make(map[string]realisationItem, len(items))
	for _, it := range items {
		byType[it.Type] = it
	}

	out := make([]domain.CardItem, 0, len(barjasStages))
	for _, stage := range barjasStages {
		it, ok := byType[stage.typ]
		if !ok || it.Detail == nil {
			continue
		}
		d := it.Detail
		item := domain.CardItem{
			Label:        stage.label,
			Value:        fmt.Sprintf("%d/%d", d.Selesai, d.Target),
			PopoverTitle: fmt.Sprintf("%d dari %d paket selesai.", d.Selesai, d.Target),
		}
		if d.Terlambat > 0 {
			item.Late = d.Terlambat
			item.PopoverContent = fmt.Sprintf("%d paket terlambat.", d.Terlambat)
		}
		out = append(out, item)
	}
	return out
}

func valueItems(items []realisationItem) []domain.CardItem {
	out := make([]domain.CardItem, 0, 2)
	for _, it := range items {
		switch it.Type {
		case "realisasi":
			out = append(out, domain.CardItem{Label: "Realisasi", Value: it.display()})
		case "target":
			out = append(out, domain.CardItem{Label: "Target", Value: it.display()})
		}
	}
	return out
}

// ExtractArticles finds the article list under results[0].data, data or
// articles, in that order.
func ExtractArticles(body []byte) []domain.Article {
	var env struct {
		Results []struct {
			Data []domain.Article `json:"data"`
		} `json:"results"`
		Data     []domain.Article `json:"data"`
		Articles []domain.Article `json:"articles"`
	}
	if err := json.Unmarshal(body, &env); err != nil {
		return []domain.Article{}
	}
	switch {
	case len(env.Results) > 0 && len(env.Results[0].Data) > 0:
		return env.Results[0].Data
	case len(env.Data) > 0:
		return env.Data
	case len(env.Articles) > 0:
		return env.Articles
	default:
		return []domain.Article{}
	}
}

type budgetRow struct {
	TotalBudget      rawValue `json:"total_budget"`
	TotalRealisation rawValue `json:"total_realisasi"`
}

// SummariseBudget sums budget and realisation over /realisasi-perbulan rows.
func SummariseBudget(body []byte) domain.RealisationStats {
	var env struct {
		Results []struct {
			Data []budgetRow `json:"data"`
		} `json:"results"`
		Data []budgetRow `json:"data"`
	}
	if err := json.Unmarshal(body, &env); err != nil {
		return domain.RealisationStats{}
	}
	rows := env.Data
	if len(env.Results) > 0 {
		rows = env.Results[0].Data
	}

	var stats domain.RealisationStats
	for _, r := range rows {
		stats.TotalBudget += r.TotalBudget.Float()
		stats.TotalRealisation += r.TotalRealisation.Float()
	}
	if stats.TotalBudget > 0 {
		stats.RealizationPercentage = stats.TotalRealisation / stats.TotalBudget * 100
		stats.Variance = stats.TotalBudget - stats.TotalRealisation
	}
	return stats
}
