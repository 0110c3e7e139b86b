package relationship

import "fmt"

// XPGainPerMessage is the flat affection XP granted for each chat interaction.
const XPGainPerMessage = 10

// NextLevelXP returns the XP threshold for leveling out of the given trust
// level: 100 * 2^(level-1), with the exponent capped at 10 so thresholds stop
// doubling past level 11.
func NextLevelXP(level int) int {
	exp := level - 1
	if exp > 10 {
		exp = 10
	}
	if exp < 0 {
		exp = 0
	}
	return 100 << exp
}

// ApplyXP adds a gain to the ledger and consumes thresholds until the
// remaining XP no longer covers one. Bulk grants (the weekly reward's +500)
// can cross several levels in a single call.
func ApplyXP(level, xp, gain int) (newLevel, newXP int, leveledUp bool) {
	newLevel = level
	newXP = xp + gain
	for newXP >= NextLevelXP(newLevel) {
		newXP -= NextLevelXP(newLevel)
		newLevel++
		leveledUp = true
	}
	return newLevel, newXP, leveledUp
}

// DecayLevels returns how many trust levels a relationship loses after the
// given number of hours without contact: one per full day, starting at 24h.
func DecayLevels(hoursSince float64) int {
	if hoursSince < 24 {
		return 0
	}
	return int(hoursSince / 24)
}

// ApplyDecay lowers a trust level by the pending decay, flooring at 1.
// Affection XP is forfeited whenever any decay applies.
func ApplyDecay(level int, hoursSince float64) (newLevel int, decayed bool) {
	days := DecayLevels(hoursSince)
	if days == 0 || level <= 1 {
		return level, false
	}
	newLevel = level - days
	if newLevel < 1 {
		newLevel = 1
	}
	return newLevel, true
}

var levelLabels = map[int]string{
	1: "Stranger",
	2: "Acquaintance",
	3: "Companion",
	4: "Friend",
	5: "Close Friend",
}

// Info maps a trust level to its display label. Levels past 5 enter the soul
// bond tier, numbered from 1.
func Info(trustLevel int) (label string, displayLevel int) {
	if trustLevel > 5 {
		return fmt.Sprintf("Soul Bond Lv.%d", trustLevel-5), trustLevel
	}
	if l, ok := levelLabels[trustLevel]; ok {
		return l, trustLevel
	}
	return "Stranger", trustLevel
}
