package schedule

import (
	"regexp"

	"github.com/noah-isme/course-planner-api/internal/models"
	appErrors "github.com/noah-isme/course-planner-api/pkg/errors"
)

var dayToken = regexp.MustCompile(`[A-Z][a-z]*`)

type span struct {
	start models.ClockTime
	end   models.ClockTime
}

// BuildWeeklyMeetings converts raw weekly meeting descriptors of one section into
// per-day meeting lists. Weekend tokens are dropped and a span repeated on the same
// day is emitted once. Lists keep descriptor order; they are not time sorted.
func BuildWeeklyMeetings(raw []models.RawMeeting, sectionID string) (models.WeeklyMeetings, error) {
	out := models.NewWeeklyMeetings()
	seen := make(map[models.Weekday]map[span]struct{}, len(models.Weekdays))
	for _, day := range models.Weekdays {
		seen[day] = map[span]struct{}{}
	}

	for _, meeting := range raw {
		var parsed *span
		for _, token := range dayToken.FindAllString(meeting.Days, -1) {
			day := models.Weekday(token)
			if !day.Valid() {
				continue
			}
			if parsed == nil {
				sp, err := parseSpan(meeting, sectionID)
				if err != nil {
					return nil, err
				}
				parsed = &sp
			}
			if _, dup := seen[day][*parsed]; dup {
				continue
			}
			seen[day][*parsed] = struct{}{}
			out[day] = append(out[day], &models.MeetingTime{
				SectionID:      sectionID,
				Start:          parsed.start,
				End:            parsed.end,
				FormattedStart: meeting.StartTime,
				FormattedEnd:   meeting.EndTime,
				Room:           meeting.Room,
				Building:       meeting.Building,
				ClassType:      meeting.ClassType,
			})
		}
	}
	return out, nil
}

func parseSpan(meeting models.RawMeeting, sectionID string) (span, error) {
	start, err := models.ParseClockTime(meeting.StartTime)
	if err != nil {
		return span{}, appErrors.ErrInvalidMeetingTime.With(err, "invalid start time for "+sectionID)
	}
	end, err := models.ParseClockTime(meeting.EndTime)
	if err != nil {
		return span{}, appErrors.ErrInvalidMeetingTime.With(err, "invalid end time for "+sectionID)
	}
	return span{start: start, end: end}, nil
}
