package session

import "github.com/i474232898/weatherscope/internal/weather"

// Messages shown to the user for each query failure kind.
const (
	MessageNotFound      = "City not found. Please check the spelling and try again."
	MessageUnauthorized  = "Invalid API key. Please check your OpenWeatherMap API configuration."
	MessageMisconfigured = "OpenWeatherMap API key not configured. Please add OPENWEATHERMAP_API_KEY to your .env file."
	MessageNetwork       = "Failed to fetch weather data. Please try again later."
)

// MessageFor returns the user-facing message for a query failure kind.
func MessageFor(kind weather.ErrorKind) string {
	switch kind {
	case weather.KindNotFound:
		return MessageNotFound
	case weather.KindUnauthorized:
		return MessageUnauthorized
	case weather.KindMisconfigured:
		return MessageMisconfigured
	default:
		return MessageNetwork
	}
}
