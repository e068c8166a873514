package enum

// FeatureType classifies a Feature polygon/polyline (§3, §6.2). The
// numeric values match the OSM binary format's single type byte.
type FeatureType uint8

const (
	FeatureUnknown  FeatureType = 0
	FeaturePark     FeatureType = 1
	FeatureBeach    FeatureType = 2
	FeatureLake     FeatureType = 3
	FeatureRiver    FeatureType = 4
	FeatureIsland   FeatureType = 5
	FeatureBuilding FeatureType = 6
	FeatureGreenspace FeatureType = 7
	FeatureGolfCourse FeatureType = 8
	FeatureShopping FeatureType = 9
	FeatureMedical  FeatureType = 10
	FeatureUnk      FeatureType = 255
)

// String returns the human-readable name of the feature type.
func (f FeatureType) String() string {
	switch f {
	case FeatureUnknown:
		return "Unknown"
	case FeaturePark:
		return "Park"
	case FeatureBeach:
		return "Beach"
	case FeatureLake:
		return "Lake"
	case FeatureRiver:
		return "River"
	case FeatureIsland:
		return "Island"
	case FeatureBuilding:
		return "Building"
	case FeatureGreenspace:
		return "Greenspace"
	case FeatureGolfCourse:
		return "GolfCourse"
	case FeatureShopping:
		return "Shopping"
	case FeatureMedical:
		return "Medical"
	default:
		return "Unknown"
	}
}

// RelationMemberType classifies one member of a Relation (§3). The numeric
// values match the OSM binary format's member_types byte array.
type RelationMemberType uint8

const (
	MemberNode     RelationMemberType = 0
	MemberWay      RelationMemberType = 1
	MemberRelation RelationMemberType = 2
)

// String returns the human-readable name of the relation member type.
func (m RelationMemberType) String() string {
	switch m {
	case MemberNode:
		return "Node"
	case MemberWay:
		return "Way"
	case MemberRelation:
		return "Relation"
	default:
		return "Unknown"
	}
}
