/*
Copyright 2020 Gravitational, Inc.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package chef

import (
	"bytes"
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha1"
	"encoding/base64"
	"fmt"
	"io/ioutil"
	"net/http"
	"strings"

	"github.com/gravitational/trace"
	"github.com/jonboulle/clockwork"
)

const (
	// signVersion is the Chef authentication protocol version
	signVersion = "algorithm=sha1;version=1.0;"
	// authorizationChunk is the length of a single X-Ops-Authorization-N header value
	authorizationChunk = 60
	// timestampFormat is the ISO-8601 format Chef expects in X-Ops-Timestamp
	timestampFormat = "2006-01-02T15:04:05Z"
)

// signer is an http.RoundTripper that signs every outgoing request
// with the Chef authentication protocol v1.0
type signer struct {
	userID        string
	key           *rsa.PrivateKey
	chefVersion   string
	serverVersion string
	clock         clockwork.Clock
	next          http.RoundTripper
}

// RoundTrip signs a copy of the request and passes it on to the next transport
func (s *signer) RoundTrip(req *http.Request) (*http.Response, error) {
	body, err := readBody(req)
	if err != nil {
		return nil, trace.Wrap(err)
	}
	out := req.Clone(req.Context())
	if body != nil {
		out.Body = ioutil.NopCloser(bytes.NewReader(body))
		out.ContentLength = int64(len(body))
	}
	headers, err := s.headers(req.Method, req.URL.Path, body)
	if err != nil {
		return nil, trace.Wrap(err)
	}
	for name, value := range headers {
		out.Header.Set(name, value)
	}
	return s.next.RoundTrip(out)
}

// headers computes the full set of authentication headers for a request
func (s *signer) headers(method, path string, body []byte) (map[string]string, error) {
	timestamp := s.clock.Now().UTC().Format(timestampFormat)
	contentHash := hashBase64(body)
	canonical := canonicalRequest(method, path, contentHash, timestamp, s.userID)
	signature, err := rsa.SignPKCS1v15(rand.Reader, s.key, crypto.Hash(0), []byte(canonical))
	if err != nil {
		return nil, trace.Wrap(err, "failed to sign request")
	}
	headers := map[string]string{
		"Accept":                   "application/json",
		"X-Chef-Version":           s.chefVersion,
		"X-Ops-Server-API-Version": s.serverVersion,
		"X-Ops-Sign":               signVersion,
		"X-Ops-Userid":             s.userID,
		"X-Ops-Timestamp":          timestamp,
		"X-Ops-Content-Hash":       contentHash,
	}
	for i, chunk := range splitChunks(base64.StdEncoding.EncodeToString(signature), authorizationChunk) {
		headers[fmt.Sprintf("X-Ops-Authorization-%v", i+1)] = chunk
	}
	return headers, nil
}

// canonicalRequest returns the string the Chef server verifies the signature against
func canonicalRequest(method, path, contentHash, timestamp, userID string) string {
	return strings.Join([]string{
		"Method:" + strings.ToUpper(method),
		"Hashed Path:" + hashBase64([]byte(path)),
		"X-Ops-Content-Hash:" + contentHash,
		"X-Ops-Timestamp:" + timestamp,
		"X-Ops-UserId:" + userID,
	}, "\n")
}

func hashBase64(data []byte) string {
	sum := sha1.Sum(data)
	return base64.StdEncoding.EncodeToString(sum[:])
}

func splitChunks(s string, size int) (chunks []string) {
	for len(s) > size {
		chunks = append(chunks, s[:size])
		s = s[size:]
	}
	return append(chunks, s)
}

func readBody(req *http.Request) ([]byte, error) {
	if req.Body == nil || req.Body == http.NoBody {
		return nil, nil
	}
	defer req.Body.Close()
	body, err := ioutil.ReadAll(req.Body)
	if err != nil {
		return nil, trace.ConvertSystemError(err)
	}
	return body, nil
}
