package structs

// DefaultTeamMembers is offered as contact person choices on the task form.
var DefaultTeamMembers = []string{
	"John Smith",
	"Sarah Johnson",
	"Mike Chen",
	"Emily Davis",
	"David Wilson",
	"Lisa Anderson",
	"Tom Brown",
	"Amy Taylor",
	"Chris Martin",
	"Jessica Lee",
}

// SampleTasks returns the board's seed data. Each call returns a fresh slice.
func SampleTasks() []Task {
	return []Task{
		{
			ID:            "1",
			DateCreated:   "2024-01-15",
			EntityName:    "Acme Corporation",
			TaskType:      TypeMeeting,
			ScheduledTime: "2024-01-20T10:00",
			ContactPerson: "John Smith",
			Note:          "Discuss project requirements and timeline",
			Status:        StatusOpen,
		},
		{
			ID:            "2",
			DateCreated:   "2024-01-16",
			EntityName:    "Tech Solutions Inc",
			TaskType:      TypeCall,
			ScheduledTime: "2024-01-18T14:30",
			ContactPerson: "Sarah Johnson",
			Note:          "Follow up on proposal submission",
			Status:        StatusClosed,
		},
		{
			ID:            "3",
			DateCreated:   "2024-01-17",
			EntityName:    "Global Enterprises",
			TaskType:      TypeEmail,
			ScheduledTime: "2024-01-19T09:00",
			ContactPerson: "Mike Chen",
			Status:        StatusOpen,
		},
		{
			ID:            "4",
			DateCreated:   "2024-01-18",
			EntityName:    "StartUp Hub",
			TaskType:      TypePresentation,
			ScheduledTime: "2024-01-25T15:00",
			ContactPerson: "Emily Davis",
			Note:          "Present new service offerings",
			Status:        StatusOpen,
		},
		{
			ID:            "5",
			DateCreated:   "2024-01-19",
			EntityName:    "Innovation Labs",
			TaskType:      TypeFollowUp,
			ScheduledTime: "2024-01-22T11:00",
			ContactPerson: "David Wilson",
			Note:          "Check on project progress",
			Status:        StatusOpen,
		},
	}
}
