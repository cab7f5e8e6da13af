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

// NewClientRequest is the payload of a Chef API client registration
type NewClientRequest struct {
	// Name is the API client name, same as the node name
	Name string `json:"name"`
	// Admin grants the client administrative rights
	Admin bool `json:"admin"`
	// CreateKey asks the server to generate a key pair for the client
	CreateKey bool `json:"create_key"`
}

// CreatedClient is the server response to a client registration
type CreatedClient struct {
	// URI is the location of the new client
	URI string `json:"uri"`
	// PrivateKey is returned by servers speaking API version 0
	PrivateKey string `json:"private_key,omitempty"`
	// ChefKey is returned by servers speaking API version 1 and later
	ChefKey *ClientKey `json:"chef_key,omitempty"`
}

// ClientKey describes a key pair generated for a client
type ClientKey struct {
	// Name is the key name, "default" for the key created with the client
	Name string `json:"name"`
	// PublicKey is the PEM encoded public key
	PublicKey string `json:"public_key"`
	// PrivateKey is the PEM encoded private key, only returned on creation
	PrivateKey string `json:"private_key"`
	// ExpirationDate is the key expiration date or "infinity"
	ExpirationDate string `json:"expiration_date"`
}

// Key returns the private key of the new client regardless
// of the API version the server responded with
func (r CreatedClient) Key() string {
	if r.ChefKey != nil && r.ChefKey.PrivateKey != "" {
		return r.ChefKey.PrivateKey
	}
	return r.PrivateKey
}
