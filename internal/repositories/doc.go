// package repositories implements persistence for resolved track locators.
//
// The resolve cache maps a normalized (title, artists) key to the video ID
// the search provider returned, so repeat runs skip the search round trip.
package repositories
