package rally

// Result carries the fields every WSAPI result envelope has.
type Result struct {
	RallyAPIMajor string   `json:"_rallyAPIMajor,omitempty"`
	RallyAPIMinor string   `json:"_rallyAPIMinor,omitempty"`
	Errors        []string `json:"Errors"`
	Warnings      []string `json:"Warnings"`
}

// AuthorizeResponse is returned by the security/authorize endpoint.
type AuthorizeResponse struct {
	OperationResult struct {
		Result
		SecurityToken string `json:"SecurityToken"`
	} `json:"OperationResult"`
}

// CreateResult is returned by <type>/create endpoints.
type CreateResult[T any] struct {
	CreateResult struct {
		Result
		Object *T `json:"Object"`
	} `json:"CreateResult"`
}

// QueryResult is one page of a <type> query.
type QueryResult[T any] struct {
	QueryResult struct {
		Result
		Results          []T `json:"Results"`
		PageSize         int `json:"PageSize"`
		StartIndex       int `json:"StartIndex"`
		TotalResultCount int `json:"TotalResultCount"`
	} `json:"QueryResult"`
}

// ObjectRef is a summary of a related object.
type ObjectRef struct {
	RallyAPIMajor string `json:"_rallyAPIMajor,omitempty"`
	RallyAPIMinor string `json:"_rallyAPIMinor,omitempty"`
	Ref           string `json:"_ref"`
	RefObjectName string `json:"_refObjectName,omitempty"`
	RefObjectUUID string `json:"_refObjectUUID,omitempty"`
	Type          string `json:"_type"`
}

// CollectionRef points at a related collection.
type CollectionRef struct {
	RallyAPIMajor string `json:"_rallyAPIMajor,omitempty"`
	RallyAPIMinor string `json:"_rallyAPIMinor,omitempty"`
	Ref           string `json:"_ref"`
	Type          string `json:"_type"`
	Count         int    `json:"Count"`
}

// Object holds the fields shared by all full WSAPI objects.
type Object struct {
	ObjectVersion string `json:"_objectVersion,omitempty"`
	RallyAPIMajor string `json:"_rallyAPIMajor,omitempty"`
	RallyAPIMinor string `json:"_rallyAPIMinor,omitempty"`
	Ref           string `json:"_ref"`
	RefObjectName string `json:"_refObjectName,omitempty"`
	RefObjectUUID string `json:"_refObjectUUID,omitempty"`
	Type          string `json:"_type"`
	ObjectID      int64  `json:"ObjectID"`
	ObjectUUID    string `json:"ObjectUUID"`
}

// Feature is a PortfolioItem/Feature.
type Feature struct {
	Object
	Name                           string         `json:"Name"`
	Description                    string         `json:"Description"`
	FormattedID                    string         `json:"FormattedID"`
	Owner                          *ObjectRef     `json:"Owner"`
	Project                        *ObjectRef     `json:"Project"`
	Workspace                      *ObjectRef     `json:"Workspace"`
	Parent                         *ObjectRef     `json:"Parent,omitempty"`
	Milestones                     *CollectionRef `json:"Milestones"`
	Predecessors                   *CollectionRef `json:"Predecessors"`
	Successors                     *CollectionRef `json:"Successors"`
	UserStories                    *CollectionRef `json:"UserStories"`
	PortfolioItemType              *ObjectRef     `json:"PortfolioItemType"`
	PortfolioItemTypeName          string         `json:"PortfolioItemTypeName"`
	State                          *ObjectRef     `json:"State"`
	Blocked                        bool           `json:"Blocked"`
	BlockedReason                  string         `json:"BlockedReason,omitempty"`
	PercentDoneByStoryCount        float64        `json:"PercentDoneByStoryCount"`
	PercentDoneByStoryPlanEstimate float64        `json:"PercentDoneByStoryPlanEstimate"`
	PlannedStartDate               string         `json:"PlannedStartDate,omitempty"`
	PlannedEndDate                 string         `json:"PlannedEndDate,omitempty"`
	PreliminaryEstimate            *ObjectRef     `json:"PreliminaryEstimate,omitempty"`
	PreliminaryEstimateValue       float64        `json:"PreliminaryEstimateValue,omitempty"`
	Release                        *ObjectRef     `json:"Release,omitempty"`
}

// Project is a Rally project.
type Project struct {
	Object
	Name             string         `json:"Name"`
	Description      string         `json:"Description"`
	Notes            string         `json:"Notes"`
	State            string         `json:"State"`
	SchemaVersion    string         `json:"SchemaVersion"`
	Owner            *ObjectRef     `json:"Owner"`
	Parent           *ObjectRef     `json:"Parent,omitempty"`
	Subscription     *ObjectRef     `json:"Subscription"`
	Workspace        *ObjectRef     `json:"Workspace"`
	BuildDefinitions *CollectionRef `json:"BuildDefinitions"`
	Children         *CollectionRef `json:"Children"`
	Iterations       *CollectionRef `json:"Iterations"`
	Releases         *CollectionRef `json:"Releases"`
	RevisionHistory  *CollectionRef `json:"RevisionHistory"`
	TeamMembers      *CollectionRef `json:"TeamMembers"`
	JiraProjectKey   string         `json:"c_JiraProjectKey,omitempty"`
}

// Subscription is the top-level Rally account.
type Subscription struct {
	Object
	Name             string         `json:"Name"`
	SubscriptionID   int64          `json:"SubscriptionID"`
	SubscriptionType string         `json:"SubscriptionType"`
	Workspaces       *CollectionRef `json:"Workspaces"`
	ZuulID           string         `json:"ZuulID"`
}

// AttributeDefinition describes a field of a type definition.
type AttributeDefinition struct {
	Object
	Name              string     `json:"Name"`
	ElementName       string     `json:"ElementName"`
	Custom            bool       `json:"Custom"`
	RealAttributeType string     `json:"RealAttributeType"`
	TypeDefinition    *ObjectRef `json:"TypeDefinition"`
}
