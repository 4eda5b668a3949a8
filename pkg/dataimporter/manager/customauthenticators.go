package manager

import (
	"net/http"

	"github.com/travigo/transitrecon/pkg/dataimporter/datasets"
)

func isZeroAuthentication(authentication datasets.SourceAuthentication) bool {
	return len(authentication.Query) == 0 &&
		len(authentication.Header) == 0 &&
		authentication.Basic.Username == "" &&
		authentication.Basic.Password == ""
}

func authenticateRequest(req *http.Request, authentication datasets.SourceAuthentication) {
	if len(authentication.Query) > 0 {
		query := req.URL.Query()
		for key, value := range authentication.Query {
			query.Set(key, value)
		}
		req.URL.RawQuery = query.Encode()
	}

	for key, value := range authentication.Header {
		req.Header.Set(key, value)
	}

	if authentication.Basic.Username != "" {
		req.SetBasicAuth(authentication.Basic.Username, authentication.Basic.Password)
	}
}
