package catalog

const (
	EventProfileCompleted     EventID = "profile.completed"
	EventProfilePhotoAdded    EventID = "profile.photo_added"
	EventCVCreated            EventID = "cv.created"
	EventCVEducationAdded     EventID = "cv.education_added"
	EventCVExperienceAdded    EventID = "cv.experience_added"
	EventCVSkillAdded         EventID = "cv.skill_added"
	EventCVLanguageAdded      EventID = "cv.language_added"
	EventCVExported           EventID = "cv.exported"
	EventApplicationCreated   EventID = "application.created"
	EventApplicationStatus    EventID = "application.status_changed"
	EventInterviewScheduled   EventID = "application.interview_scheduled"
	EventInterviewCompleted   EventID = "application.interview_completed"
	EventOfferReceived        EventID = "application.offer_received"
	EventOfferAccepted        EventID = "application.accepted"
	EventInterviewPrepared    EventID = "interview.prepared"
	EventInterviewNoteAdded   EventID = "interview.note_added"
	EventContactAdded         EventID = "contact.added"
	EventContactFollowedUp    EventID = "contact.followed_up"
	EventInsightGenerated     EventID = "insight.generated"
	EventDailyLogin           EventID = "daily.login"
	EventWeeklyGoalCompleted  EventID = "engagement.weekly_goal_completed"
	EventNotificationsEnabled EventID = "engagement.notifications_enabled"
)

var defaultEvents = []Event{
	{ID: EventProfileCompleted, XPReward: 50, Category: CategoryProfile},
	{ID: EventProfilePhotoAdded, XPReward: 10, Category: CategoryProfile},
	{ID: EventCVCreated, XPReward: 30, Category: CategoryCV},
	{ID: EventCVEducationAdded, XPReward: 15, Category: CategoryCV},
	{ID: EventCVExperienceAdded, XPReward: 20, Category: CategoryCV},
	{ID: EventCVSkillAdded, XPReward: 5, Category: CategoryCV},
	{ID: EventCVLanguageAdded, XPReward: 5, Category: CategoryCV},
	{ID: EventCVExported, XPReward: 10, Category: CategoryCV},
	{ID: EventApplicationCreated, XPReward: 20, Category: CategoryApplication},
	{ID: EventApplicationStatus, XPReward: 5, Category: CategoryApplication},
	{ID: EventInterviewScheduled, XPReward: 40, Category: CategoryApplication},
	{ID: EventInterviewCompleted, XPReward: 60, Category: CategoryApplication},
	{ID: EventOfferReceived, XPReward: 150, Category: CategoryApplication},
	{ID: EventOfferAccepted, XPReward: 300, Category: CategoryApplication},
	{ID: EventInterviewPrepared, XPReward: 25, Category: CategoryInterview},
	{ID: EventInterviewNoteAdded, XPReward: 10, Category: CategoryInterview},
	{ID: EventContactAdded, XPReward: 10, Category: CategoryContact},
	{ID: EventContactFollowedUp, XPReward: 15, Category: CategoryContact},
	{ID: EventInsightGenerated, XPReward: 5, Category: CategoryEngagement},
	{ID: EventDailyLogin, XPReward: 5, Category: CategoryEngagement},
	{ID: EventWeeklyGoalCompleted, XPReward: 75, Category: CategoryEngagement},
	{ID: EventNotificationsEnabled, XPReward: 10, Category: CategoryEngagement},
}

var defaultLevels = []Level{
	{Order: 1, RequiredXP: 0, Name: "newcomer", Title: "Newcomer"},
	{Order: 2, RequiredXP: 200, Name: "explorer", Title: "Explorer"},
	{Order: 3, RequiredXP: 500, Name: "applicant", Title: "Applicant"},
	{Order: 4, RequiredXP: 1000, Name: "networker", Title: "Networker"},
	{Order: 5, RequiredXP: 1750, Name: "contender", Title: "Contender"},
	{Order: 6, RequiredXP: 2750, Name: "candidate", Title: "Strong Candidate"},
	{Order: 7, RequiredXP: 4000, Name: "finalist", Title: "Finalist"},
	{Order: 8, RequiredXP: 6000, Name: "closer", Title: "Closer"},
	{Order: 9, RequiredXP: 8500, Name: "pro", Title: "Job Hunt Pro"},
	{Order: 10, RequiredXP: 12000, Name: "legend", Title: "Career Legend"},
}

var defaultBadges = []Badge{
	{
		ID:           "first_step",
		Name:         "First Step",
		Icon:         "graduation-cap",
		Description:  "Add your first education entry to a CV.",
		Requirements: []Requirement{{EventID: EventCVEducationAdded, Count: 1}},
	},
	{
		ID:           "all_set",
		Name:         "All Set",
		Icon:         "user-check",
		Description:  "Complete your profile and add a photo.",
		Requirements: []Requirement{{EventID: EventProfileCompleted, Count: 1}, {EventID: EventProfilePhotoAdded, Count: 1}},
	},
	{
		ID:           "cv_architect",
		Name:         "CV Architect",
		Icon:         "file-text",
		Description:  "Build a CV with experience, education and skills.",
		Requirements: []Requirement{
			{EventID: EventCVCreated, Count: 1},
			{EventID: EventCVExperienceAdded, Count: 2},
			{EventID: EventCVEducationAdded, Count: 1},
			{EventID: EventCVSkillAdded, Count: 5},
		},
	},
	{
		ID:           "polyglot",
		Name:         "Polyglot",
		Icon:         "languages",
		Description:  "List three languages on your CV.",
		Requirements: []Requirement{{EventID: EventCVLanguageAdded, Count: 3}},
	},
	{
		ID:           "ready_to_ship",
		Name:         "Ready to Ship",
		Icon:         "download",
		Description:  "Export a CV.",
		Requirements: []Requirement{{EventID: EventCVExported, Count: 1}},
	},
	{
		ID:           "first_application",
		Name:         "Foot in the Door",
		Icon:         "send",
		Description:  "Track your first job application.",
		Requirements: []Requirement{{EventID: EventApplicationCreated, Count: 1}},
	},
	{
		ID:           "go_getter",
		Name:         "Go-Getter",
		Icon:         "rocket",
		Description:  "Track ten job applications.",
		Requirements: []Requirement{{EventID: EventApplicationCreated, Count: 10}},
	},
	{
		ID:           "relentless",
		Name:         "Relentless",
		Icon:         "flame",
		Description:  "Track fifty job applications.",
		Requirements: []Requirement{{EventID: EventApplicationCreated, Count: 50}},
	},
	{
		ID:           "veteran",
		Name:         "Veteran",
		Icon:         "medal",
		Description:  "Track five applications and complete an interview.",
		Requirements: []Requirement{
			{EventID: EventApplicationCreated, Count: 5},
			{EventID: EventInterviewCompleted, Count: 1},
		},
	},
	{
		ID:           "well_prepared",
		Name:         "Well Prepared",
		Icon:         "clipboard-list",
		Description:  "Prepare for and take notes on three interviews.",
		Requirements: []Requirement{
			{EventID: EventInterviewPrepared, Count: 3},
			{EventID: EventInterviewNoteAdded, Count: 3},
		},
	},
	{
		ID:           "interview_ace",
		Name:         "Interview Ace",
		Icon:         "mic",
		Description:  "Complete five interviews.",
		Requirements: []Requirement{{EventID: EventInterviewCompleted, Count: 5}},
	},
	{
		ID:           "offer_in_hand",
		Name:         "Offer in Hand",
		Icon:         "mail-open",
		Description:  "Receive a job offer.",
		Requirements: []Requirement{{EventID: EventOfferReceived, Count: 1}},
	},
	{
		ID:           "hired",
		Name:         "Hired!",
		Icon:         "briefcase",
		Description:  "Accept a job offer.",
		Requirements: []Requirement{{EventID: EventOfferAccepted, Count: 1}},
	},
	{
		ID:           "networker",
		Name:         "Networker",
		Icon:         "users",
		Description:  "Add ten contacts and follow up with five.",
		Requirements: []Requirement{
			{EventID: EventContactAdded, Count: 10},
			{EventID: EventContactFollowedUp, Count: 5},
		},
	},
	{
		ID:           "regular",
		Name:         "Regular",
		Icon:         "calendar-check",
		Description:  "Log in on thirty days.",
		Requirements: []Requirement{{EventID: EventDailyLogin, Count: 30}},
	},
	{
		ID:           "goal_crusher",
		Name:         "Goal Crusher",
		Icon:         "target",
		Description:  "Complete four weekly goals.",
		Requirements: []Requirement{{EventID: EventWeeklyGoalCompleted, Count: 4}},
	},
	{
		ID:           "data_driven",
		Name:         "Data Driven",
		Icon:         "sparkles",
		Description:  "Generate five AI insights.",
		Requirements: []Requirement{{EventID: EventInsightGenerated, Count: 5}},
	},
}

// Default returns the built-in job search catalog.
func Default() *Catalog {
	c, err := New(defaultEvents, defaultLevels, defaultBadges)
	if err != nil {
		panic("catalog: built-in definitions are invalid: " + err.Error())
	}
	return c
}
