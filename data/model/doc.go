// Package model defines the identity-data response types and the rules for
// decoding a response and choosing the section that carries an identity's
// display fields.
//
// The identity-data API answers with a JSON list of sections:
//
//	[
//	  {"name": "header", ...},
//	  {
//	    "name": "main",
//	    "logoUrl": "https://...",
//	    "sectionMain1Description": "...",
//	    "sectionMain1Background2ImageUrl": "https://...",
//	    "lastUpdated": "2024-02-29T10:00:00Z"
//	  },
//	  {"name": "footer", ...}
//	]
//
// Older deployments answer with the main section as a single bare object, and
// some proxies deliver the whole document as a JSON-encoded string. Both are
// accepted.
package model
