package intelligence

// Names of the operations the model may call.
const (
	FuncGetRoomOptions = "get_room_options"
	FuncBookRoom       = "book_room"
)

// BookingFunctions returns the declarations sent with every completion request.
func BookingFunctions() []FunctionSpec {
	return []FunctionSpec{
		{
			Name:        FuncGetRoomOptions,
			Description: "Get available room options from the hotel",
			Parameters: ParameterSchema{
				Type:       "object",
				Properties: map[string]PropertySchema{},
				Required:   []string{},
			},
		},
		{
			Name:        FuncBookRoom,
			Description: "Book a room at the hotel",
			Parameters: ParameterSchema{
				Type: "object",
				Properties: map[string]PropertySchema{
					"roomId":      {Type: "number"},
					"fullName":    {Type: "string"},
					"email":       {Type: "string"},
					"checkInDate": {Type: "string"},
					"nights":      {Type: "number"},
				},
				Required: []string{"roomId", "fullName", "email", "checkInDate", "nights"},
			},
		},
	}
}
