package sqlite

import (
	"encoding/base64"
	"log/slog"
	"strings"
)

// obfuscationPrefix tags obfuscated values. The tag matches the storage
// format of earlier releases so existing stored connections keep decoding.
//
// This is reversible Base64 obfuscation, not encryption: it keeps secrets
// out of casual view of the database file and nothing more. Real protection
// would need authenticated encryption with a securely stored key.
const obfuscationPrefix = "JENKINS_INSIGHTS_ENC:"

// obfuscate encodes a credential value for storage. Empty values stay empty.
func obfuscate(value string) string {
	if value == "" {
		return ""
	}
	return obfuscationPrefix + base64.StdEncoding.EncodeToString([]byte(value))
}

// deobfuscate decodes a stored credential value. Untagged values are
// returned unchanged, so plaintext rows from before the tagging scheme
// still load. A tagged value that fails to decode yields an empty string.
func deobfuscate(value string) string {
	if !strings.HasPrefix(value, obfuscationPrefix) {
		return value
	}

	decoded, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(value, obfuscationPrefix))
	if err != nil {
		slog.Error("failed to decode stored credential", "error", err)
		return ""
	}
	return string(decoded)
}
