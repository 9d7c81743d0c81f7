package textsource

import "github.com/verte-zerg/typeforge/internal/model"

// FallbackWords is served when no words are stored.
const FallbackWords = "typeforge demo mode starts instantly and remains stable with no external services configured"

// FallbackQuote is served when no quotes are stored.
var FallbackQuote = model.Quote{
	Content: "Type calmly, strike accurately, and speed will rise with each focused session.",
	Author:  "Typeforge",
}

// BuiltinQuotes seeds the quote table.
var BuiltinQuotes = []model.Quote{
	{Content: "Small steps repeated daily build remarkable speed over time.", Author: "Typeforge"},
	{Content: "Accuracy is the path to speed; speed is the reward for focus.", Author: "Typeforge"},
	{Content: "A calm rhythm beats a rushed sprint in every long session.", Author: "Typeforge"},
	{Content: "Consistency turns scattered effort into measurable progress.", Author: "Typeforge"},
	{Content: "Train your hands with intention and your mind will follow.", Author: "Typeforge"},
	{Content: "Practice does not make perfect; deliberate practice makes progress.", Author: "Typeforge"},
	{Content: "The keyboard rewards patience before it rewards speed.", Author: "Typeforge"},
	{Content: "Clear thinking appears when the fingers stop fighting the keys.", Author: "Typeforge"},
	{Content: "Start slow, stay precise, and let speed arrive naturally.", Author: "Typeforge"},
	{Content: "Discipline in short sessions often beats intensity once a week.", Author: "Typeforge"},
}

// BuiltinWords seeds the English word table.
var BuiltinWords = []string{
	"the", "be", "of", "and", "a", "to", "in", "he", "have", "it",
	"that", "for", "they", "with", "as", "not", "on", "she", "at", "by",
	"this", "we", "you", "do", "but", "from", "or", "which", "one", "would",
	"all", "will", "there", "say", "who", "make", "when", "can", "more", "if",
	"no", "man", "out", "other", "so", "what", "time", "up", "go", "about",
	"than", "into", "could", "state", "only", "new", "year", "some", "take", "come",
	"these", "know", "see", "use", "get", "like", "then", "first", "any", "work",
	"now", "may", "such", "give", "over", "think", "most", "even", "find", "day",
	"also", "after", "way", "many", "must", "look", "before", "great", "back", "through",
	"long", "where", "much", "should", "well", "people", "down", "own", "just", "because",
	"good", "each", "those", "feel", "seem", "how", "high", "too", "place", "little",
	"world", "very", "still", "nation", "hand", "old", "life", "tell", "write", "become",
	"here", "show", "house", "both", "between", "need", "mean", "call", "develop", "under",
	"last", "right", "move", "thing", "general", "school", "never", "same", "another", "begin",
	"while", "number", "part", "turn", "real", "leave", "might", "want", "point", "form",
	"off", "child", "few", "small", "since", "against", "ask", "late", "home", "interest",
	"large", "person", "end", "open", "public", "follow", "during", "present", "without", "again",
	"hold", "govern", "around", "possible", "head", "consider", "word", "program", "problem", "however",
	"lead", "system", "set", "order", "eye", "plan", "run", "keep", "face", "fact",
	"group", "play", "stand", "increase", "early", "course", "change", "help", "line", "city",
}
