package leads

// Field is a canonical column name that downstream logic depends on.
type Field string

const (
	FieldFirstName   Field = "First Name"
	FieldLastName    Field = "Last Name"
	FieldCompany     Field = "Company"
	FieldPosition    Field = "Position"
	FieldURL         Field = "URL"
	FieldEmail       Field = "Email"
	FieldIndustry    Field = "Industry"
	FieldLocation    Field = "Location"
	FieldConnectedOn Field = "Connected On"
)

// CanonicalFields lists every canonical field in output order.
var CanonicalFields = []Field{
	FieldFirstName,
	FieldLastName,
	FieldCompany,
	FieldPosition,
	FieldURL,
	FieldEmail,
	FieldIndustry,
	FieldLocation,
	FieldConnectedOn,
}

type fieldVariants struct {
	field    Field
	variants []string
}

// vocabulary maps canonical fields to lowercase header synonyms. Order matters:
// fields are tried in this order and variants are listed most specific first.
var vocabulary = []fieldVariants{
	{FieldFirstName, []string{"first name", "firstname", "first_name", "given name", "contact first name", "fname", "first"}},
	{FieldLastName, []string{"last name", "lastname", "last_name", "family name", "surname", "contact last name", "lname", "last"}},
	{FieldCompany, []string{"company", "company name", "companyname", "organization", "org", "account name", "accountname", "employer", "business", "account"}},
	{FieldPosition, []string{"position", "job title", "jobtitle", "title", "role", "job role", "job_position", "occupation"}},
	{FieldURL, []string{"url", "linkedin url", "profile url", "website", "linkedin", "profile"}},
	{FieldEmail, []string{"email", "email address", "e-mail", "work email"}},
	{FieldIndustry, []string{"industry", "sector"}},
	{FieldLocation, []string{"location", "city", "region", "country"}},
	{FieldConnectedOn, []string{"connected on", "connectedon", "date connected", "connection date"}},
}

// fullNameColumns are headers holding a combined "first last" value.
var fullNameColumns = map[string]struct{}{
	"name":         {},
	"full name":    {},
	"contact name": {},
	"fullname":     {},
	"display name": {},
}

// profileHints are keyword hints used when canonical mapping left a profile field empty.
var profileHints = []fieldVariants{
	{FieldFirstName, []string{"first name", "firstname", "first_name", "fname"}},
	{FieldLastName, []string{"last name", "lastname", "last_name", "lname", "surname"}},
	{FieldCompany, []string{"company", "organization", "employer", "account", "business"}},
	{FieldPosition, []string{"position", "title", "role", "job title", "occupation"}},
}

// missingTokens are cell values treated as absent data.
var missingTokens = map[string]struct{}{
	"nan": {}, "-nan": {}, "null": {}, "none": {}, "n/a": {}, "na": {},
	"#n/a": {}, "#n/a n/a": {}, "#na": {}, "<na>": {},
	"-1.#ind": {}, "1.#ind": {}, "-1.#qnan": {}, "1.#qnan": {},
}

func isCanonical(col string) bool {
	for _, f := range CanonicalFields {
		if string(f) == col {
			return true
		}
	}
	return false
}
