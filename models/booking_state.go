package models

// Stage is the coarse phase of a booking conversation.
type Stage string

const (
	StageInitial        Stage = "initial"
	StageCollectingInfo Stage = "collecting_info"
	StageReadyToBook    Stage = "ready_to_book"
)

// BookingState is the extraction snapshot of one conversation.
// Each optional field is written at most once until Reset.
type BookingState struct {
	Stage          Stage   `json:"stage" bson:"stage"`
	FullName       *string `json:"fullName" bson:"fullName"`
	Email          *string `json:"email" bson:"email"`
	CheckInDate    *string `json:"checkInDate" bson:"checkInDate"`
	Nights         *int    `json:"nights" bson:"nights"`
	SelectedRoomID *int    `json:"selectedRoomId" bson:"selectedRoomId"`
}

// NewBookingState returns the zeroed initial state.
func NewBookingState() BookingState {
	return BookingState{Stage: StageInitial}
}

// Reset returns the state to its zeroed form.
func (s *BookingState) Reset() {
	*s = NewBookingState()
}

// DeriveStage computes the stage from the four tracked fields.
// SelectedRoomID does not participate.
func (s BookingState) DeriveStage() Stage {
	known := 0
	for _, present := range []bool{
		s.FullName != nil,
		s.Email != nil,
		s.CheckInDate != nil,
		s.Nights != nil,
	} {
		if present {
			known++
		}
	}

	switch known {
	case 4:
		return StageReadyToBook
	case 0:
		return StageInitial
	default:
		return StageCollectingInfo
	}
}

// UpdateStage recomputes Stage from scratch.
func (s *BookingState) UpdateStage() {
	s.Stage = s.DeriveStage()
}

// Clone deep-copies the optional fields.
func (s BookingState) Clone() BookingState {
	out := s
	out.FullName = cloneString(s.FullName)
	out.Email = cloneString(s.Email)
	out.CheckInDate = cloneString(s.CheckInDate)
	out.Nights = cloneInt(s.Nights)
	out.SelectedRoomID = cloneInt(s.SelectedRoomID)
	return out
}

func cloneString(v *string) *string {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func cloneInt(v *int) *int {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
