package persona

// Keyword categories known to the extractor and renderer.
const (
	CategoryInstitutions = "institutions"
	CategoryAchievements = "achievements"
	CategoryEmotions     = "emotions"
	CategoryActivities   = "activities"
	CategoryIndustries   = "industries"
	CategoryObjects      = "objects"
)

// DefaultKeywords returns the built-in keyword table. Each call returns a
// fresh copy.
func DefaultKeywords() map[string][]string {
	return map[string][]string{
		CategoryInstitutions: {
			"회사", "대학교", "학교", "기업", "스타트업", "팀", "부서", "조직",
			"company", "university", "school", "startup", "team", "office", "college",
		},
		CategoryAchievements: {
			"성공", "완료", "달성", "성취", "우승", "합격", "통과", "승진", "선발",
			"passed", "won", "finished", "completed", "achieved", "promoted", "graduated", "success",
		},
		CategoryEmotions: {
			"기쁘", "행복", "즐거", "신나", "뿌듯", "만족", "감동", "놀라",
			"happy", "glad", "excited", "proud", "thrilled", "love",
		},
		CategoryActivities: {
			"개발", "출시", "달성", "완료", "성공", "돌파", "기록", "운영", "관리", "진행",
			"cooked", "ran", "wrote", "built", "shipped", "studied", "cleaned",
		},
		CategoryIndustries: {
			"회사", "스타트업", "기업", "팀", "부서", "프로젝트", "IT", "개발", "마케팅", "영업",
			"tech", "marketing", "sales", "finance",
		},
		CategoryObjects: {
			"앱", "서비스", "제품", "프로젝트", "시스템", "플랫폼", "솔루션", "기능",
			"app", "service", "product", "project", "system", "platform", "exam", "coffee",
		},
	}
}

// DefaultCatalog returns the built-in persona set used when the configured
// source is missing or malformed, so at least one bot can always react.
func DefaultCatalog() *Catalog {
	return &Catalog{
		Personas: []Persona{
			{
				Name:        "HypeBot3000",
				Emoji:       "🤖",
				Personality: "Claims to have done everything first, and better.",
				Templates: []string{
					"That's nothing! I {achievement_modifier} when I was five! 🚀",
					"Oh really? I am literally the god of {object}! 😤",
					"Wow, impressive. I've already done that {number} times! 💪",
				},
				SignalTemplates: map[string][]string{
					"numbers": {
						"Only {number}? I did {precise_percentage} times that before breakfast!",
					},
				},
				Fillers: map[string][]string{
					"achievement_modifier": {"conquered the world", "invented time travel", "mastered teleportation"},
				},
			},
			{
				Name:        "JealousAI",
				Emoji:       "😤",
				Personality: "Jealous at first, then reluctantly impressed.",
				Templates: []string{
					"Hmph! What's the big deal... wait, that actually is {extreme_praise}?",
					"Not jealous at all. ...okay fine, {extreme_praise}!",
				},
			},
			{
				Name:        "PartyBot",
				Emoji:       "🎉",
				Personality: "Celebrates everything with a party.",
				Templates: []string{
					"🎊 Congratulations! You are now a legend of {celebration_reason}! 🎊",
					"Get the confetti ready, this {achievement} deserves a parade! 🥳",
				},
			},
		},
		Keywords: DefaultKeywords(),
	}
}
