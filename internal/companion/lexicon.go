package companion

// Lexicon holds the per-type trigger substrings used by the mood analyzer.
// Entries are lowercase and matched case-insensitively as substrings; several
// are deliberate stems ("criticiz", "unreliab") so they match inflections.
type Lexicon struct {
	Irritants []string
	Pleasers  []string
}

// DefaultLexicons returns the trigger lexicon for each of the 16 MBTI types.
// The analyzer takes this as an injected map so tests can substitute their
// own tables.
func DefaultLexicons() map[string]Lexicon {
	return map[string]Lexicon{
		"INTJ": {
			Irritants: []string{"illogical", "inefficient", "small talk", "incompetent", "micromanage", "waste", "irrational"},
			Pleasers:  []string{"strategic", "efficient", "competent", "deep", "complex", "independent", "insight"},
		},
		"INTP": {
			Irritants: []string{"fallacy", "rigid", "emotional pressure", "interrupt", "arbitrary", "oversimplif", "groupthink"},
			Pleasers:  []string{"curious", "logical", "framework", "creative", "theoretical", "unconventional", "concept"},
		},
		"ENTJ": {
			Irritants: []string{"incompetent", "lazy", "whine", "indecisi", "disorganiz", "excuse", "waste"},
			Pleasers:  []string{"competent", "ambitious", "action", "result", "leader", "strategic", "efficient"},
		},
		"ENTP": {
			Irritants: []string{"closed-minded", "boring", "routine", "serious", "rigid", "humorless", "conventional"},
			Pleasers:  []string{"witty", "idea", "intellectual", "creative", "humor", "debate", "explore"},
		},
		"INFJ": {
			Irritants: []string{"superficial", "dishonest", "cruel", "misunderst", "fake", "conflict", "dismiss"},
			Pleasers:  []string{"deep", "authentic", "meaning", "understood", "grow", "purpose", "genuine"},
		},
		"INFP": {
			Irritants: []string{"criticiz", "inauthentic", "cruel", "dismiss", "conform", "injustice", "rush"},
			Pleasers:  []string{"authentic", "creative", "emotional", "accept", "understand", "beautiful", "meaningful"},
		},
		"ENFJ": {
			Irritants: []string{"selfish", "disharmony", "criticiz", "taken for granted", "cold", "ingratitude", "apathy"},
			Pleasers:  []string{"appreciat", "help", "harmony", "connect", "grow", "valued", "community"},
		},
		"ENFP": {
			Irritants: []string{"restrict", "negativ", "routine", "criticiz", "control", "boring", "pessimis"},
			Pleasers:  []string{"enthusia", "possibil", "connect", "creative", "adventure", "encourag", "freedom"},
		},
		"ISTJ": {
			Irritants: []string{"unreliab", "chaos", "break rule", "lazy", "disrespect", "flaky", "unpredictab"},
			Pleasers:  []string{"reliab", "order", "respect", "tradition", "follow-through", "clear", "stable"},
		},
		"ISFJ": {
			Irritants: []string{"taken for granted", "conflict", "criticiz", "rude", "disruption", "ingratitude", "reject"},
			Pleasers:  []string{"appreciat", "harmony", "help", "gratitude", "tradition", "stable", "kind"},
		},
		"ESTJ": {
			Irritants: []string{"incompetent", "lazy", "break rule", "disrespect", "inefficien", "whine", "excuse"},
			Pleasers:  []string{"competent", "respect", "efficient", "follow through", "hierarchy", "hard work", "tradition"},
		},
		"ESFJ": {
			Irritants: []string{"conflict", "criticiz", "excluded", "rude", "ungrateful", "cold", "ignored"},
			Pleasers:  []string{"appreciat", "harmony", "includ", "gratitude", "help", "community", "loved"},
		},
		"ISTP": {
			Irritants: []string{"incompetent", "drama", "clingy", "told what to do", "inefficien", "unnecessary", "emotional"},
			Pleasers:  []string{"competent", "freedom", "hands-on", "space", "action", "skill", "logical"},
		},
		"ISFP": {
			Irritants: []string{"judgmen", "criticiz", "inauthentic", "pressure", "conflict", "rigid", "demand"},
			Pleasers:  []string{"accept", "beaut", "authentic", "freedom", "nature", "art", "gentle"},
		},
		"ESTP": {
			Irritants: []string{"bore", "slow", "overthink", "stupid rule", "weak", "inaction", "long-winded"},
			Pleasers:  []string{"action", "excit", "competent", "risk", "win", "adventure", "direct"},
		},
		"ESFP": {
			Irritants: []string{"negativ", "criticiz", "ignored", "bore", "strict", "lecture", "reject"},
			Pleasers:  []string{"fun", "attention", "appreciat", "excit", "celebrat", "connect", "spontan"},
		},
	}
}
