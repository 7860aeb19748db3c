package config

// BotDifficulty affects reaction time and decision quality
type BotDifficulty int

const (
	BotDifficultyEasy BotDifficulty = iota
	BotDifficultyNormal
	BotDifficultyHard
)

var botDifficultyNames = map[string]BotDifficulty{
	"easy":   BotDifficultyEasy,
	"normal": BotDifficultyNormal,
	"hard":   BotDifficultyHard,
}

// ParseBotDifficulty maps a flag value to a difficulty, defaulting to normal.
func ParseBotDifficulty(s string) BotDifficulty {
	if d, ok := botDifficultyNames[s]; ok {
		return d
	}
	return BotDifficultyNormal
}

// BotDifficultyConfig holds tuning values for bot behavior at a specific difficulty
type BotDifficultyConfig struct {
	ReactionDelay int     // Frames between decisions
	ChaseRange    float64 // Horizontal distance to start chasing
	RigidRange    float64 // Distance to hold rigid mode before contact
	JumpHeight    float64 // Target this far above triggers a jump
	EdgeMargin    float64 // Stay this far inside the outermost platform edges
}

// BotConfigData holds all bot-related configuration
type BotConfigData struct {
	Difficulties map[BotDifficulty]BotDifficultyConfig
}

// Bot holds bot AI configuration
var Bot BotConfigData

func init() {
	Bot = BotConfigData{
		Difficulties: map[BotDifficulty]BotDifficultyConfig{
			BotDifficultyEasy: {
				ReactionDelay: 30, // 0.5 second reaction time
				ChaseRange:    200.0,
				RigidRange:    40.0,
				JumpHeight:    60.0,
				EdgeMargin:    40.0,
			},
			BotDifficultyNormal: {
				ReactionDelay: 15, // 0.25 second reaction time
				ChaseRange:    400.0,
				RigidRange:    60.0,
				JumpHeight:    45.0,
				EdgeMargin:    30.0,
			},
			BotDifficultyHard: {
				ReactionDelay: 5, // Near-instant reaction
				ChaseRange:    800.0,
				RigidRange:    80.0,
				JumpHeight:    30.0,
				EdgeMargin:    20.0,
			},
		},
	}
}
