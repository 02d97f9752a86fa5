// Package tripadvisor builds travel cards from the Tripadvisor Content API.
//
// A query is matched to hotels or, when it mentions food, restaurants. Each
// matching place becomes one widget carrying its details, a few photos and
// recent reviews. Only the location search is required; details, photos
// and reviews degrade to absent fields.
package tripadvisor
