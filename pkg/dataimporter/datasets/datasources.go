package datasets

type DataSource struct {
	Identifier string
	Region     string
	Provider   Provider
	Datasets   []DataSet

	// Applied to every dataset that does not define its own
	SourceAuthentication *SourceAuthentication
}
