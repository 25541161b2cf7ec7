package dto

// AddSectionRequest names one section of a catalog course.
type AddSectionRequest struct {
	CourseCode    string `json:"course_code" validate:"required,alphanum,min=4,max=12"`
	SectionNumber string `json:"section_number" validate:"required,alphanum,min=1,max=8"`
}

// Load modes.
const (
	LoadModeAppend  = "append"
	LoadModeReplace = "replace"
)

// LoadScheduleRequest carries a serialized schedule such as "CMSC131-0101,MATH140-0201".
type LoadScheduleRequest struct {
	Serialized string `json:"serialized" validate:"max=4096"`
	Mode       string `json:"mode" validate:"omitempty,oneof=append replace"`
}

// SaveScheduleRequest names a snapshot of the current session schedule.
type SaveScheduleRequest struct {
	Name string `json:"name" validate:"required,min=1,max=120"`
}

// ListSavedSchedulesQuery binds pagination for saved schedules.
type ListSavedSchedulesQuery struct {
	Page     int `form:"page" validate:"omitempty,min=1"`
	PageSize int `form:"page_size" validate:"omitempty,min=1,max=100"`
}
