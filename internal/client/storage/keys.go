package storage

// Key names a persisted value. The set of keys and their encodings is the
// store schema; bump SchemaVersion and add a step to migrate when it changes.
type Key string

const (
	KeyAdminUsername Key = "admin_username"
	KeyAdminToken    Key = "admin_token"

	KeySessionID Key = "feishu_session_id"

	// KeyLegacyBaseToken is the pre-v1 single access token with no table id.
	KeyLegacyBaseToken Key = "feishu_base_token"
	KeyBaseTokens      Key = "feishu_base_tokens"

	KeyPluginJWT       Key = "feishu_plugin_jwt_token"
	KeyPluginJWTExpiry Key = "feishu_plugin_jwt_expiry"

	KeySchemaVersion Key = "schema_version"
)

// Encoding describes how a key's bytes are interpreted.
type Encoding string

const (
	EncodingString Encoding = "string"
	// EncodingTokenMap is a JSON object of table id to token.
	EncodingTokenMap Encoding = "json-map"
	// EncodingUnixMs is decimal milliseconds since the epoch.
	EncodingUnixMs Encoding = "unix-ms"
	EncodingInt    Encoding = "int"
)

// SchemaVersion is the layout written by this build.
const SchemaVersion = 1

// Schema lists every key the store knows about.
var Schema = map[Key]Encoding{
	KeyAdminUsername:   EncodingString,
	KeyAdminToken:      EncodingString,
	KeySessionID:       EncodingString,
	KeyLegacyBaseToken: EncodingString,
	KeyBaseTokens:      EncodingTokenMap,
	KeyPluginJWT:       EncodingString,
	KeyPluginJWTExpiry: EncodingUnixMs,
	KeySchemaVersion:   EncodingInt,
}
