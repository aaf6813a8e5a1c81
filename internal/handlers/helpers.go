package handlers

import (
	"time"

	"clinic-appointments-server/internal/middleware"
	"clinic-appointments-server/internal/services"
	"clinic-appointments-server/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// requireActor returns the authenticated caller or writes a 401.
func requireActor(c *gin.Context) (services.Actor, bool) {
	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		utils.Unauthorized(c, "User not authenticated")
		return services.Actor{}, false
	}
	return actor, true
}

// pathID reads a UUID path parameter or writes a 400.
func pathID(c *gin.Context, name string) (string, bool) {
	id := c.Param(name)
	if _, err := uuid.Parse(id); err != nil {
		utils.BadRequest(c, "Invalid "+name+" format")
		return "", false
	}
	return id, true
}

const dateLayout = "2006-01-02"

// queryRange reads the optional from and to query parameters as RFC 3339
// timestamps or YYYY-MM-DD dates. A date-only to covers that whole day.
func queryRange(c *gin.Context) (from, to *time.Time, ok bool) {
	if from, ok = parseQueryTime(c, "from", false); !ok {
		return nil, nil, false
	}
	if to, ok = parseQueryTime(c, "to", true); !ok {
		return nil, nil, false
	}
	return from, to, true
}

func parseQueryTime(c *gin.Context, key string, endOfDay bool) (*time.Time, bool) {
	raw := c.Query(key)
	if raw == "" {
		return nil, true
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, true
	}
	if t, err := time.Parse(dateLayout, raw); err == nil {
		if endOfDay {
			t = t.AddDate(0, 0, 1).Add(-time.Nanosecond)
		}
		return &t, true
	}
	utils.BadRequest(c, "Invalid "+key+": expected RFC 3339 timestamp or YYYY-MM-DD")
	return nil, false
}
