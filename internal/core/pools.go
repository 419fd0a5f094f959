package core

// Sample pools for generated values. All pools are fixed and non-empty.
var (
	FirstNames = []string{"James", "Mary", "John", "Patricia", "Robert", "Jennifer", "Michael", "Linda", "William", "Elizabeth"}
	LastNames  = []string{"Smith", "Johnson", "Williams", "Brown", "Jones", "Garcia", "Miller", "Davis", "Rodriguez", "Martinez"}
	Companies  = []string{"TechCorp", "Global Solutions", "Innovate Inc", "Data Systems", "Future Enterprises"}
	Domains    = []string{"example.com", "test.org", "demo.net", "sample.io", "mockup.co"}
	Cities     = []string{"New York", "Los Angeles", "Chicago", "Houston", "Phoenix", "Philadelphia", "San Antonio", "San Diego", "Dallas"}
	Countries  = []string{"United States", "Canada", "United Kingdom", "Australia", "Germany", "France", "Japan"}

	Streets               = []string{"Main", "Oak", "Maple", "Cedar", "Pine"}
	TransactionCategories = []string{"Food", "Transport", "Entertainment", "Utilities", "Shopping"}
	Industries            = []string{"Technology", "Healthcare", "Finance", "Retail", "Manufacturing"}
	Browsers              = []string{"Chrome", "Firefox", "Safari", "Edge"}
	OperatingSystems      = []string{"Windows", "macOS", "Linux", "iOS", "Android"}

	UserAgents = []string{
		"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36",
		"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/14.1.1 Safari/605.1.15",
		"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:89.0) Gecko/20100101 Firefox/89.0",
	}
)
