package populate

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// RegionReport is the per-region part of a Summary.
type RegionReport struct {
	ID          int     `json:"id" yaml:"id"`
	Area        int     `json:"area" yaml:"area"`
	Tag         string  `json:"tag,omitempty" yaml:"tag,omitempty"`
	Theme       string  `json:"theme,omitempty" yaml:"theme,omitempty"`
	Overridden  bool    `json:"theme_overridden,omitempty" yaml:"theme_overridden,omitempty"`
	DangerLevel float64 `json:"danger_level" yaml:"danger_level"`
	Distance    float64 `json:"entrance_distance" yaml:"entrance_distance"`
	Allocated   int     `json:"allocated" yaml:"allocated"`
	Remaining   int     `json:"remaining" yaml:"remaining"`
	Spawned     int     `json:"spawned_threat" yaml:"spawned_threat"`
	Bonus       int     `json:"bonus_threat,omitempty" yaml:"bonus_threat,omitempty"`
	Encounters  int     `json:"encounters" yaml:"encounters"`
}

// Summary reports what one Populate call did. It is meant for logs and
// debugging tools, not for gameplay decisions.
type Summary struct {
	RunID string `json:"run_id,omitempty" yaml:"run_id,omitempty"`
	Depth int    `json:"depth" yaml:"depth"`
	Seed  int64  `json:"seed" yaml:"seed"`
	Final bool   `json:"final,omitempty" yaml:"final,omitempty"`

	Regions         int `json:"regions" yaml:"regions"`
	PowerBudget     int `json:"power_budget" yaml:"power_budget"`
	BudgetAllocated int `json:"budget_allocated" yaml:"budget_allocated"`
	BudgetSpent     int `json:"budget_spent" yaml:"budget_spent"`
	BonusThreat     int `json:"bonus_threat" yaml:"bonus_threat"`

	ItemBudget      int `json:"item_budget" yaml:"item_budget"`
	ItemBudgetSpent int `json:"item_budget_spent" yaml:"item_budget_spent"`
	ItemsPlaced     int `json:"items_placed" yaml:"items_placed"`
	GuardedItems    int `json:"guarded_items" yaml:"guarded_items"`

	GoldBudget int        `json:"gold_budget" yaml:"gold_budget"`
	GoldPlaced int        `json:"gold_placed" yaml:"gold_placed"`
	GoldPiles  int        `json:"gold_piles" yaml:"gold_piles"`
	Gold       []GoldPile `json:"gold,omitempty" yaml:"gold,omitempty"`

	EncountersPlaced int `json:"encounters_placed" yaml:"encounters_placed"`
	EncountersFailed int `json:"encounters_failed" yaml:"encounters_failed"`
	CreaturesSpawned int `json:"creatures_spawned" yaml:"creatures_spawned"`

	ExitPlaced  bool   `json:"exit_placed" yaml:"exit_placed"`
	ExitRegion  int    `json:"exit_region" yaml:"exit_region"`
	ExitFeature string `json:"exit_feature,omitempty" yaml:"exit_feature,omitempty"`

	Uniques    []string `json:"uniques,omitempty" yaml:"uniques,omitempty"`
	OutOfDepth string   `json:"out_of_depth,omitempty" yaml:"out_of_depth,omitempty"`

	ThemeDistribution     map[string]int `json:"theme_distribution" yaml:"theme_distribution"`
	EncounterDistribution map[string]int `json:"encounter_distribution" yaml:"encounter_distribution"`
	RegionReports         []RegionReport `json:"region_reports" yaml:"region_reports"`

	Warnings []string      `json:"warnings,omitempty" yaml:"warnings,omitempty"`
	Elapsed  time.Duration `json:"elapsed_ns" yaml:"elapsed"`
}

func newSummary(depth int, seed int64, final bool) *Summary {
	return &Summary{
		Depth:                 depth,
		Seed:                  seed,
		Final:                 final,
		ExitRegion:            -1,
		ThemeDistribution:     make(map[string]int),
		EncounterDistribution: make(map[string]int),
	}
}

// Utilization is the fraction of the power budget spent on encounters.
func (s *Summary) Utilization() float64 {
	if s.PowerBudget <= 0 {
		return 0
	}
	return float64(s.BudgetSpent) / float64(s.PowerBudget)
}

// JSON encodes the summary. Map keys are sorted, so equal summaries encode
// to equal bytes.
func (s *Summary) JSON() ([]byte, error) {
	return json.Marshal(s)
}

// YAML encodes the summary for terminal output.
func (s *Summary) YAML() ([]byte, error) {
	return yaml.Marshal(s)
}

// addWarning records msg with its key/value pairs rendered as "key=value".
func (s *Summary) addWarning(msg string, args ...any) {
	var sb strings.Builder
	sb.WriteString(msg)
	for i := 0; i+1 < len(args); i += 2 {
		fmt.Fprintf(&sb, " %v=%v", args[i], args[i+1])
	}
	s.Warnings = append(s.Warnings, sb.String())
}

// collect fills the budget totals and region reports from the final state.
func (s *Summary) collect(fs *FloorState) {
	s.Regions = len(fs.Order)
	s.RegionReports = make([]RegionReport, 0, len(fs.Order))
	for _, id := range fs.Order {
		st := fs.Regions[id]
		s.BudgetAllocated += st.AllocatedBudget
		s.BudgetSpent += st.SpawnedThreat
		s.BonusThreat += st.BonusThreat
		if st.Theme != "" {
			s.ThemeDistribution[st.Theme]++
		}
		s.RegionReports = append(s.RegionReports, RegionReport{
			ID:          id,
			Area:        st.Region.Area(),
			Tag:         st.Region.Tag,
			Theme:       st.Theme,
			Overridden:  st.ThemeOverridden,
			DangerLevel: st.DangerLevel,
			Distance:    fs.AverageDistance(id),
			Allocated:   st.AllocatedBudget,
			Remaining:   st.RemainingBudget,
			Spawned:     st.SpawnedThreat,
			Bonus:       st.BonusThreat,
			Encounters:  len(st.Encounters),
		})
	}
}
