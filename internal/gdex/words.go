package gdex

// Per-language constant sets used by the scorer. The common-word lists are a
// compact stand-in for full frequency lists: the top function and content
// words a learner is expected to know at any tier.

var commonWordsEN = map[string]struct{}{
	"the": {}, "be": {}, "to": {}, "of": {}, "and": {}, "a": {}, "in": {},
	"that": {}, "have": {}, "i": {}, "it": {}, "for": {}, "not": {}, "on": {},
	"with": {}, "he": {}, "as": {}, "you": {}, "do": {}, "at": {}, "this": {},
	"but": {}, "his": {}, "by": {}, "from": {}, "they": {}, "we": {},
	"say": {}, "her": {}, "she": {}, "or": {}, "an": {}, "will": {}, "my": {},
	"one": {}, "all": {}, "would": {}, "there": {}, "their": {}, "what": {},
	"so": {}, "up": {}, "out": {}, "if": {}, "about": {}, "who": {},
	"get": {}, "which": {}, "go": {}, "me": {}, "when": {}, "make": {},
	"can": {}, "like": {}, "time": {}, "no": {}, "just": {}, "him": {},
	"know": {}, "take": {}, "person": {}, "into": {}, "year": {}, "your": {},
	"good": {}, "some": {}, "could": {}, "them": {}, "see": {}, "other": {},
	"than": {}, "then": {}, "now": {}, "look": {}, "only": {}, "come": {},
	"its": {}, "over": {}, "think": {}, "also": {}, "back": {}, "after": {},
	"use": {}, "two": {}, "how": {}, "our": {}, "work": {}, "first": {},
	"well": {}, "way": {}, "even": {}, "new": {}, "want": {}, "because": {},
	"any": {}, "these": {}, "give": {}, "day": {}, "most": {}, "us": {},
}

var commonWordsES = map[string]struct{}{
	"el": {}, "la": {}, "de": {}, "que": {}, "y": {}, "a": {}, "en": {},
	"un": {}, "ser": {}, "se": {}, "no": {}, "haber": {}, "por": {},
	"con": {}, "su": {}, "para": {}, "como": {}, "estar": {}, "tener": {},
	"le": {}, "lo": {}, "todo": {}, "pero": {}, "más": {}, "hacer": {},
	"o": {}, "poder": {}, "decir": {}, "este": {}, "ir": {}, "otro": {},
	"ese": {}, "si": {}, "me": {}, "ya": {}, "ver": {}, "porque": {},
	"dar": {}, "cuando": {}, "él": {}, "muy": {}, "sin": {}, "vez": {},
	"mucho": {}, "saber": {}, "qué": {}, "sobre": {}, "mi": {},
	"alguno": {}, "mismo": {}, "yo": {}, "también": {}, "hasta": {},
	"año": {}, "dos": {}, "querer": {}, "entre": {}, "así": {},
	"primero": {}, "desde": {}, "grande": {}, "eso": {}, "ni": {},
	"nos": {}, "llegar": {}, "pasar": {}, "tiempo": {}, "ella": {},
	"día": {}, "uno": {}, "bien": {}, "poco": {}, "deber": {},
	"entonces": {}, "poner": {}, "cosa": {}, "tanto": {}, "hombre": {},
	"parecer": {}, "nuestro": {}, "tan": {}, "donde": {}, "ahora": {},
	"parte": {}, "después": {}, "vida": {}, "quedar": {}, "siempre": {},
	"creer": {}, "hablar": {}, "llevar": {}, "dejar": {}, "nada": {},
	"cada": {}, "seguir": {}, "menos": {}, "nuevo": {}, "encontrar": {},
}

// Blocklisted words that must never appear in an example shown to a learner.
var avoidWordsEN = map[string]struct{}{
	"fuck": {}, "shit": {}, "damn": {}, "hell": {}, "bastard": {},
	"ass": {}, "asshole": {}, "bitch": {}, "cunt": {}, "dick": {},
	"crap": {}, "piss": {}, "nigger": {}, "faggot": {},
}

var avoidWordsES = map[string]struct{}{
	"mierda": {}, "puta": {}, "joder": {}, "coño": {}, "cabrón": {},
	"gilipollas": {}, "hostia": {}, "carajo": {}, "follar": {},
	"chingar": {}, "maricón": {}, "polla": {},
}

// Pronouns that may lack a clear referent inside a single sentence.
var pronounsEN = map[string]struct{}{
	"it": {}, "they": {}, "them": {}, "their": {}, "he": {}, "she": {},
	"his": {}, "her": {}, "this": {}, "that": {}, "these": {}, "those": {},
}

var pronounsES = map[string]struct{}{
	"lo": {}, "la": {}, "los": {}, "las": {}, "él": {}, "ella": {},
	"ellos": {}, "ellas": {}, "este": {}, "esta": {}, "estos": {}, "estas": {},
}
