package generator

// nameSource holds the pools a locale draws person names from. Latin holds
// the ASCII spelling used to build email local parts.
type nameSource struct {
	first      []string
	last       []string
	firstLatin []string
	lastLatin  []string
	domains    []string
}

var locales = map[string]nameSource{
	"en": {
		first: []string{
			"John", "Jane", "Bob", "Mary", "Alice", "David", "Emma", "Michael", "Olivia", "James",
			"Sophia", "William", "Ava", "Benjamin", "Mia", "Daniel", "Charlotte", "Matthew", "Amelia", "Henry",
			"Grace", "Samuel", "Chloe", "Lucas", "Ella", "Owen", "Harper", "Jack", "Lily", "Ethan",
		},
		last: []string{
			"Smith", "Johnson", "Williams", "Jones", "Brown", "Davis", "Miller", "Wilson", "Moore", "Taylor",
			"Anderson", "Thomas", "Jackson", "White", "Harris", "Martin", "Thompson", "Garcia", "Martinez", "Robinson",
			"Clark", "Lewis", "Walker", "Hall", "Young", "King", "Wright", "Scott", "Green", "Baker",
		},
		domains: []string{
			"gmail.com", "yahoo.com", "hotmail.com", "outlook.com", "icloud.com",
			"example.com", "company.com", "business.org", "school.edu", "local.net",
		},
	},
	"ar": {
		first: []string{
			"محمد", "أحمد", "علي", "عمر", "خالد", "يوسف", "فاطمة", "عائشة", "مريم", "نور",
			"سارة", "ليلى", "حسن", "إبراهيم", "زينب",
		},
		firstLatin: []string{
			"mohammed", "ahmed", "ali", "omar", "khaled", "youssef", "fatima", "aisha", "maryam", "nour",
			"sara", "layla", "hassan", "ibrahim", "zainab",
		},
		last: []string{
			"العلي", "الحسن", "المصري", "الشامي", "العتيبي", "القحطاني", "الزهراني", "الحربي", "الخطيب", "السعدي",
		},
		lastLatin: []string{
			"alali", "alhassan", "almasri", "alshami", "alotaibi", "alqahtani", "alzahrani", "alharbi", "alkhatib", "alsaadi",
		},
		domains: []string{
			"gmail.com", "hotmail.com", "outlook.com", "example.com", "mail.sa", "company.ae",
		},
	},
}

// words feeds the "string" semantic type.
var words = []string{
	"alpha", "amber", "anchor", "apex", "arc", "atlas", "aurora", "beacon", "blaze", "bolt",
	"breeze", "cedar", "cobalt", "comet", "coral", "crest", "delta", "drift", "ember", "echo",
	"falcon", "flint", "forge", "frost", "garnet", "glacier", "harbor", "haven", "horizon", "iris",
	"jade", "juniper", "kestrel", "lumen", "maple", "meadow", "nimbus", "nova", "onyx", "orbit",
	"pebble", "pine", "prism", "quartz", "raven", "ridge", "sable", "sierra", "solstice", "summit",
	"tidal", "timber", "vertex", "vista", "willow", "zenith",
}
