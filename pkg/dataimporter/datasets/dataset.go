package datasets

type DataSet struct {
	Identifier    string        `groups:"basic"`
	DataSourceRef string        `json:"-"`
	Format        DataSetFormat `groups:"basic"`

	Provider Provider `groups:"basic"`

	// Short code attached to every observation of this dataset, eg. the IATA code of the city
	Label string `groups:"basic"`

	Source               string               `groups:"internal"`
	SourceAuthentication SourceAuthentication `json:"-"`

	// Optional expression an observation must satisfy to be kept, eg. `RouteID != nil`
	Filter string `groups:"basic"`

	// Accept header override, some providers only return protobuf when asked explicitly
	Accept string `json:"-"`
}

type SourceAuthentication struct {
	Query  map[string]string
	Header map[string]string
	Basic  struct {
		Username string
		Password string
	}
	Custom string

	// Keys used by the rotating-key custom authenticator
	RotatingKeys struct {
		Header string
		Keys   []string
	}
}

type DataSetFormat string

const (
	DataSetFormatGTFSRealtime DataSetFormat = "gtfs-realtime"
)

type Provider struct {
	Name    string `groups:"basic"`
	Website string `groups:"basic"`
}
