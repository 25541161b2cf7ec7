package catalog

// GradeRow is one semester/section grade distribution from PlanetTerp.
type GradeRow struct {
	Course    string `json:"course"`
	Professor string `json:"professor"`
	Semester  string `json:"semester"`
	Section   string `json:"section"`
	APlus     int    `json:"A+"`
	A         int    `json:"A"`
	AMinus    int    `json:"A-"`
	BPlus     int    `json:"B+"`
	B         int    `json:"B"`
	BMinus    int    `json:"B-"`
	CPlus     int    `json:"C+"`
	C         int    `json:"C"`
	CMinus    int    `json:"C-"`
	DPlus     int    `json:"D+"`
	D         int    `json:"D"`
	DMinus    int    `json:"D-"`
	F         int    `json:"F"`
	W         int    `json:"W"`
	Other     int    `json:"Other"`
}

// qualityPoints returns the summed grade points and the graded entry count of
// the row. F and W carry no points but count as entries; Other is ignored.
func (r GradeRow) qualityPoints() (float64, int) {
	weighted := []struct {
		count  int
		points float64
	}{
		{r.APlus + r.A, 4.0},
		{r.AMinus, 3.7},
		{r.BPlus, 3.3},
		{r.B, 3.0},
		{r.BMinus, 2.7},
		{r.CPlus, 2.3},
		{r.C, 2.0},
		{r.CMinus, 1.7},
		{r.DPlus, 1.3},
		{r.D, 1.0},
		{r.DMinus, 0.7},
		{r.F, 0},
		{r.W, 0},
	}
	var points float64
	entries := 0
	for _, w := range weighted {
		points += float64(w.count) * w.points
		entries += w.count
	}
	return points, entries
}

// ProfessorGPA averages grade distributions per professor.
func ProfessorGPA(rows []GradeRow) map[string]float64 {
	points := map[string]float64{}
	entries := map[string]int{}
	for _, row := range rows {
		p, n := row.qualityPoints()
		points[row.Professor] += p
		entries[row.Professor] += n
	}
	out := make(map[string]float64, len(points))
	for prof, total := range points {
		if entries[prof] == 0 {
			continue
		}
		out[prof] = total / float64(entries[prof])
	}
	return out
}
