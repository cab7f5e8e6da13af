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
	"context"
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/base64"
	"encoding/json"
	"encoding/pem"
	"fmt"
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gravitational/trace"
	"github.com/jonboulle/clockwork"
	"gopkg.in/check.v1"
)

func TestChef(t *testing.T) { check.TestingT(t) }

type ChefSuite struct {
	key *rsa.PrivateKey
}

var _ = check.Suite(&ChefSuite{})

func (s *ChefSuite) SetUpSuite(c *check.C) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	c.Assert(err, check.IsNil)
	s.key = key
}

type capturedRequest struct {
	method string
	path   string
	header http.Header
	body   []byte
}

// newServer starts a test Chef server that records requests and replies
// with the given status code and body
func (s *ChefSuite) newServer(c *check.C, code int, reply string) (*httptest.Server, chan capturedRequest) {
	requestsC := make(chan capturedRequest, 10)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := ioutil.ReadAll(r.Body)
		c.Assert(err, check.IsNil)
		requestsC <- capturedRequest{
			method: r.Method,
			path:   r.URL.Path,
			header: r.Header,
			body:   body,
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		fmt.Fprint(w, reply)
	}))
	return srv, requestsC
}

func (s *ChefSuite) newClient(c *check.C, url string, clock clockwork.Clock) *Client {
	client, err := New(Config{
		URL:    url + "/organizations/acme",
		UserID: "admin",
		Key:    s.key,
		Clock:  clock,
	})
	c.Assert(err, check.IsNil)
	return client
}

func (s *ChefSuite) TestDeleteNode(c *check.C) {
	srv, requestsC := s.newServer(c, http.StatusOK, `{"name":"web-i-123"}`)
	defer srv.Close()
	clock := clockwork.NewFakeClockAt(time.Date(2020, 3, 1, 10, 0, 0, 0, time.UTC))
	client := s.newClient(c, srv.URL, clock)

	err := client.DeleteNode(context.TODO(), "web-i-123")
	c.Assert(err, check.IsNil)

	req := <-requestsC
	c.Assert(req.method, check.Equals, http.MethodDelete)
	c.Assert(req.path, check.Equals, "/organizations/acme/nodes/web-i-123")
	c.Assert(req.header.Get("X-Ops-Timestamp"), check.Equals, "2020-03-01T10:00:00Z")
	c.Assert(req.header.Get("X-Ops-Userid"), check.Equals, "admin")
	c.Assert(req.header.Get("X-Ops-Sign"), check.Equals, signVersion)
	c.Assert(req.header.Get("X-Ops-Content-Hash"), check.Equals, hashBase64(nil))
	s.verifySignature(c, req)
}

func (s *ChefSuite) TestDeleteClient(c *check.C) {
	srv, requestsC := s.newServer(c, http.StatusOK, `{}`)
	defer srv.Close()
	client := s.newClient(c, srv.URL, clockwork.NewFakeClock())

	err := client.DeleteClient(context.TODO(), "web-i-123")
	c.Assert(err, check.IsNil)

	req := <-requestsC
	c.Assert(req.method, check.Equals, http.MethodDelete)
	c.Assert(req.path, check.Equals, "/organizations/acme/clients/web-i-123")
	s.verifySignature(c, req)
}

func (s *ChefSuite) TestCreateClient(c *check.C) {
	srv, requestsC := s.newServer(c, http.StatusCreated, `{
		"uri": "https://chef/organizations/acme/clients/web-i-123",
		"chef_key": {"name": "default", "public_key": "pub", "private_key": "secret", "expiration_date": "infinity"}
	}`)
	defer srv.Close()
	client := s.newClient(c, srv.URL, clockwork.NewFakeClock())

	created, err := client.CreateClient(context.TODO(), NewClientRequest{
		Name:      "web-i-123",
		CreateKey: true,
	})
	c.Assert(err, check.IsNil)
	c.Assert(created.Key(), check.Equals, "secret")
	c.Assert(created.URI, check.Equals, "https://chef/organizations/acme/clients/web-i-123")

	req := <-requestsC
	c.Assert(req.method, check.Equals, http.MethodPost)
	c.Assert(req.path, check.Equals, "/organizations/acme/clients")
	c.Assert(req.header.Get("X-Ops-Content-Hash"), check.Equals, hashBase64(req.body))
	var payload map[string]interface{}
	c.Assert(json.Unmarshal(req.body, &payload), check.IsNil)
	c.Assert(payload, check.DeepEquals, map[string]interface{}{
		"name":       "web-i-123",
		"admin":      false,
		"create_key": true,
	})
	s.verifySignature(c, req)
}

func (s *ChefSuite) TestCreateClientLegacyResponse(c *check.C) {
	srv, _ := s.newServer(c, http.StatusCreated, `{"uri": "u", "private_key": "legacy"}`)
	defer srv.Close()
	client := s.newClient(c, srv.URL, clockwork.NewFakeClock())

	created, err := client.CreateClient(context.TODO(), NewClientRequest{Name: "web-i-123"})
	c.Assert(err, check.IsNil)
	c.Assert(created.Key(), check.Equals, "legacy")
}

func (s *ChefSuite) TestErrorResponses(c *check.C) {
	srv, _ := s.newServer(c, http.StatusNotFound, `{"error": ["Cannot load node web-i-123"]}`)
	defer srv.Close()
	client := s.newClient(c, srv.URL, clockwork.NewFakeClock())

	err := client.DeleteNode(context.TODO(), "web-i-123")
	c.Assert(trace.IsNotFound(err), check.Equals, true, check.Commentf("%v", err))

	srv2, _ := s.newServer(c, http.StatusInternalServerError, `oops`)
	defer srv2.Close()
	client = s.newClient(c, srv2.URL, clockwork.NewFakeClock())
	_, err = client.CreateClient(context.TODO(), NewClientRequest{Name: "web-i-123"})
	c.Assert(err, check.NotNil)
}

func (s *ChefSuite) TestUnreachableServer(c *check.C) {
	srv, _ := s.newServer(c, http.StatusOK, `{}`)
	url := srv.URL
	srv.Close()
	client := s.newClient(c, url, clockwork.NewFakeClock())

	err := client.DeleteNode(context.TODO(), "web-i-123")
	c.Assert(trace.IsConnectionProblem(err), check.Equals, true, check.Commentf("%v", err))
}

func (s *ChefSuite) TestConfigValidation(c *check.C) {
	for _, cfg := range []Config{
		{UserID: "admin", Key: s.key},
		{URL: "ftp://chef", UserID: "admin", Key: s.key},
		{URL: "https://chef", Key: s.key},
		{URL: "https://chef", UserID: "admin"},
	} {
		_, err := New(cfg)
		c.Assert(trace.IsBadParameter(err), check.Equals, true, check.Commentf("%#v", cfg))
	}
}

func (s *ChefSuite) TestSplitChunks(c *check.C) {
	c.Assert(splitChunks("abcdefg", 3), check.DeepEquals, []string{"abc", "def", "g"})
	c.Assert(splitChunks("abc", 3), check.DeepEquals, []string{"abc"})
}

func (s *ChefSuite) TestParsePrivateKey(c *check.C) {
	pkcs1 := pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(s.key),
	})
	key, err := ParsePrivateKey(pkcs1)
	c.Assert(err, check.IsNil)
	c.Assert(key.N.Cmp(s.key.N), check.Equals, 0)

	der, err := x509.MarshalPKCS8PrivateKey(s.key)
	c.Assert(err, check.IsNil)
	key, err = ParsePrivateKey(pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der}))
	c.Assert(err, check.IsNil)
	c.Assert(key.N.Cmp(s.key.N), check.Equals, 0)

	_, err = ParsePrivateKey([]byte("not a key"))
	c.Assert(trace.IsBadParameter(err), check.Equals, true)

	_, err = ParsePrivateKey(pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: []byte("x")}))
	c.Assert(trace.IsBadParameter(err), check.Equals, true)
}

func (s *ChefSuite) TestReadPrivateKey(c *check.C) {
	path := c.MkDir() + "/client.pem"
	c.Assert(ioutil.WriteFile(path, pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(s.key),
	}), 0600), check.IsNil)
	key, err := ReadPrivateKey(path)
	c.Assert(err, check.IsNil)
	c.Assert(key.N.Cmp(s.key.N), check.Equals, 0)

	_, err = ReadPrivateKey(c.MkDir() + "/missing.pem")
	c.Assert(trace.IsNotFound(err), check.Equals, true)
}

// verifySignature checks the request signature the way the Chef server does
func (s *ChefSuite) verifySignature(c *check.C, req capturedRequest) {
	var chunks []string
	for i := 1; ; i++ {
		chunk := req.header.Get(fmt.Sprintf("X-Ops-Authorization-%v", i))
		if chunk == "" {
			break
		}
		c.Assert(len(chunk) <= authorizationChunk, check.Equals, true)
		chunks = append(chunks, chunk)
	}
	c.Assert(chunks, check.Not(check.HasLen), 0)
	signature, err := base64.StdEncoding.DecodeString(strings.Join(chunks, ""))
	c.Assert(err, check.IsNil)
	canonical := canonicalRequest(req.method, req.path,
		req.header.Get("X-Ops-Content-Hash"),
		req.header.Get("X-Ops-Timestamp"),
		req.header.Get("X-Ops-Userid"))
	err = rsa.VerifyPKCS1v15(&s.key.PublicKey, crypto.Hash(0), []byte(canonical), signature)
	c.Assert(err, check.IsNil)
}
