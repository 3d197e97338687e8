package api

// Post is a single generated post as returned by the list endpoint.
// Content is an opaque payload: either a JSON document with text/image/video
// sections or plain text. Parsing lives in internal/content.
type Post struct {
	ID           string `json:"id"`
	Content      string `json:"content"`
	Platform     string `json:"platform"`
	SourceIdeaID string `json:"sourceIdeaId,omitempty"`
	UserID       string `json:"userId,omitempty"`
	CreatedAt    string `json:"createdAt"`
}

// ListMeta is the pagination envelope returned alongside the post list.
type ListMeta struct {
	Total     int `json:"total"`
	NoOfPages int `json:"noofpages"`
	Page      int `json:"page"`
	Limit     int `json:"limit"`
}

// ListPostsResponse is the full list endpoint payload.
type ListPostsResponse struct {
	Data []Post   `json:"data"`
	Meta ListMeta `json:"meta"`
}

// ListPostsParams are the query parameters accepted by ListPosts.
// Search is omitted from the request when empty.
type ListPostsParams struct {
	Page    int
	Limit   int
	OrderBy string
	Search  string
}

// InstagramPreview is the rendered preview of a freshly generated post.
type InstagramPreview struct {
	PostID             string   `json:"postId"`
	Username           string   `json:"username"`
	UserProfilePicture string   `json:"userProfilePicture"`
	PostImage          string   `json:"postImage"`
	Caption            string   `json:"caption"`
	Hashtags           []string `json:"hashtags"`
	Likes              int      `json:"likes"`
	Comments           int      `json:"comments"`
	Timestamp          string   `json:"timestamp"`
}

// GenerateResponse is the primary artifact of the generation workflow.
// Sub-resources (video script, posting schedule) are keyed by PostID.
type GenerateResponse struct {
	PostID         string           `json:"postId"`
	Preview        InstagramPreview `json:"preview"`
	HasVideoScript bool             `json:"hasVideoScript"`
	GeneratedAt    string           `json:"generatedAt"`
	CreditsUsed    int              `json:"creditsUsed"`
}

// VideoScriptScene is one scene of a video script.
type VideoScriptScene struct {
	SceneNumber     int    `json:"sceneNumber"`
	Title           string `json:"title"`
	Duration        string `json:"duration"`
	ShotType        string `json:"shotType"` // closeup, wide, medium, b-roll, talking-head
	VoiceoverScript string `json:"voiceoverScript"`
	VisualNotes     string `json:"visualNotes"`
	ShootingTips    string `json:"shootingTips"`
}

// VideoScript is the video-script sub-resource.
type VideoScript struct {
	PostID               string             `json:"postId"`
	Hook                 string             `json:"hook"`
	Caption              string             `json:"caption"`
	TotalDuration        string             `json:"totalDuration"`
	Scenes               []VideoScriptScene `json:"scenes"`
	AudienceEngagement   string             `json:"audienceEngagement"`
	Hashtags             []string           `json:"hashtags"`
	ShootingInstructions string             `json:"shootingInstructions"`
}

// PostRecommendation is a single slot recommendation within a schedule.
type PostRecommendation struct {
	RecommendedDate string `json:"recommendedDate"`
	DayOfWeek       string `json:"dayOfWeek"`
	TimeSlot        string `json:"timeSlot"`
	Reason          string `json:"reason"`
}

// PostingGap describes the recommended spacing between the image and video posts.
type PostingGap struct {
	Days   int    `json:"days"`
	Hours  int    `json:"hours"`
	Reason string `json:"reason"`
}

// NextPostSuggestion recommends the next piece of content to produce.
type NextPostSuggestion struct {
	ContentType     string `json:"contentType"` // text, image, video
	RecommendedDate string `json:"recommendedDate"`
	DayOfWeek       string `json:"dayOfWeek"`
	Reason          string `json:"reason"`
}

// BestPostingTime is an engagement-ranked posting window for one weekday.
type BestPostingTime struct {
	DayOfWeek  string   `json:"dayOfWeek"`
	TimeSlots  []string `json:"timeSlots"`
	Engagement string   `json:"engagement"`
}

// PostingSchedule is the posting-schedule sub-resource.
type PostingSchedule struct {
	PostID             string             `json:"postId"`
	ImagePost          PostRecommendation `json:"imagePost"`
	VideoPost          PostRecommendation `json:"videoPost"`
	GapBetweenPosts    PostingGap         `json:"gapBetweenPosts"`
	NextPostSuggestion NextPostSuggestion `json:"nextPostSuggestion"`
	BestPostingTimes   []BestPostingTime  `json:"bestPostingTimes"`
}
