package timezone

import "time"

var Location *time.Location

func init() {
	var err error
	Location, err = time.LoadLocation("Europe/Warsaw")
	if err != nil {
		panic(err)
	}
}

// force the timezone to Warsaw because the portal reports interval
// boundaries in Polish local time while our containers tend to run
// in UTC, which would shift every midnight-anchored date computation
func Now() time.Time {
	return time.Now().In(Location)
}
