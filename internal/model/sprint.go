package model

type Sprint struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	StartDate string `json:"start_date,omitempty"`
	EndDate   string `json:"end_date,omitempty"`
}

func FindSprint(sprints []*Sprint, id int64) *Sprint {
	for _, s := range sprints {
		if s.ID == id {
			return s
		}
	}
	return nil
}
