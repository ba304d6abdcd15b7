package gmail

import "encoding/base64"

// decodeBody decodes Gmail body data, which uses RFC 4648 base64url
// encoding. Some responses arrive in standard base64, so that is tried as a
// fallback.
func decodeBody(data string) ([]byte, error) {
	decoded, err := base64.URLEncoding.DecodeString(data)
	if err == nil {
		return decoded, nil
	}
	if decoded, stdErr := base64.StdEncoding.DecodeString(data); stdErr == nil {
		return decoded, nil
	}
	return nil, err
}
