package major

// HistoryYears lists the admission years a record can carry, oldest first.
var HistoryYears = []int{2017, 2018, 2019, 2020, 2021, 2022, 2023, 2024}

// YearResult is the cutoff score and rank for one admission year.
type YearResult struct {
	Year    int  `json:"year"`
	Score   *int `json:"score"`
	Ranking *int `json:"ranking"`
}

func (m *Major) yearFields(year int) (score, ranking **int, ok bool) {
	switch year {
	case 2017:
		return &m.AdmissionScore2017, &m.AdmissionRanking2017, true
	case 2018:
		return &m.AdmissionScore2018, &m.AdmissionRanking2018, true
	case 2019:
		return &m.AdmissionScore2019, &m.AdmissionRanking2019, true
	case 2020:
		return &m.AdmissionScore2020, &m.AdmissionRanking2020, true
	case 2021:
		return &m.AdmissionScore2021, &m.AdmissionRanking2021, true
	case 2022:
		return &m.AdmissionScore2022, &m.AdmissionRanking2022, true
	case 2023:
		return &m.AdmissionScore2023, &m.AdmissionRanking2023, true
	case 2024:
		return &m.AdmissionScore2024, &m.AdmissionRanking2024, true
	default:
		return nil, nil, false
	}
}

// Year returns the result for one year. Unknown years yield two nils.
func (m *Major) Year(year int) YearResult {
	score, ranking, ok := m.yearFields(year)
	if !ok {
		return YearResult{Year: year}
	}
	return YearResult{Year: year, Score: *score, Ranking: *ranking}
}

// SetYear stores copies of score and ranking for year. It reports false for
// years outside HistoryYears.
func (m *Major) SetYear(year int, score, ranking *int) bool {
	s, r, ok := m.yearFields(year)
	if !ok {
		return false
	}
	*s = copyInt(score)
	*r = copyInt(ranking)
	return true
}

// History returns the years that have a score or a rank, oldest first.
func (m *Major) History() []YearResult {
	out := make([]YearResult, 0, len(HistoryYears))
	for _, y := range HistoryYears {
		r := m.Year(y)
		if r.Score != nil || r.Ranking != nil {
			out = append(out, r)
		}
	}
	return out
}

func copyInt(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
