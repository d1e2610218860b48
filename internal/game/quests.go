package game

// Quest is one of the daily rituals shown on the home screen.
type Quest struct {
	Type        string `json:"type"`
	Description string `json:"description"`
	Progress    int    `json:"progress"`
	Target      int    `json:"target"`
	Reward      string `json:"reward"`
	Completed   bool   `json:"completed"`
}

var dailyQuests = []struct {
	kind        ActionKind
	description string
	target      int
	reward      string
}{
	{Feed, "Share a meal", 1, "+bond"},
	{Groom, "Groom your companion", 1, "+bond"},
	{Train, "Train together", 2, "+focus"},
}

// DailyQuests builds today's quest list from per-kind activity counts.
func DailyQuests(counts map[string]int) []Quest {
	out := make([]Quest, 0, len(dailyQuests))
	for _, q := range dailyQuests {
		progress := counts[q.kind.String()]
		if progress > q.target {
			progress = q.target
		}
		out = append(out, Quest{
			Type:        q.kind.String(),
			Description: q.description,
			Progress:    progress,
			Target:      q.target,
			Reward:      q.reward,
			Completed:   progress >= q.target,
		})
	}
	return out
}
