// Package lastfm is a minimal client for the Last.fm web API.
//
// Only the two calls needed to build wallpapers are implemented:
//
//   - user.getinfo, wrapped by Client.Validate, which checks that a user
//     exists and has scrobbled something
//   - user.gettopalbums, wrapped by Client.TopAlbums and FetchTopAlbums
//
// # Response decoding
//
// Responses are decoded with goccy/go-json into the types of the dto
// subpackage and converted to model.Album. Last.fm reports failures as
// {"error": <code>, "message": <text>} bodies, sometimes with a 200 status;
// these are detected with gjson before decoding and surfaced as *APIError.
//
// Numeric fields arrive as strings ("playcount": "1234"); dto.Count accepts
// both forms.
package lastfm
