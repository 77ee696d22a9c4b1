// Package domain models Bangladesh Meteorological Department (BMD) district
// forecast data and the types shared by the query resolution pipeline.
//
// # Data Source
//
// Forecasts come from the BMD WRF model tables published on the Bangladesh
// Agro-Meteorological Information Service portal (https://www.bamis.gov.bd).
// Each district has a per-horizon table page at
//
//	/en/bmd/wrf/table/<district>/<days>/
//
// with one column per forecast day and one row per parameter metric.
//
// # Table Conventions
//
// Parameter rows (labels vary slightly between deployments, matched by
// keyword):
//
//	Temperature (°C):    min / avg / max rows
//	Relative humidity:   min / avg / max rows (percent)
//	Soil moisture:       min / avg / max rows (percent)
//	Rainfall (mm):       a single total, but the row appears TWICE in the
//	                     source table. The duplicates normally agree; when
//	                     they differ beyond 0.01mm the first occurrence wins
//	                     and a data-quality warning is attached. They are
//	                     never averaged, so a scrape regression stays visible.
//	Wind speed (km/h):   min / avg / max rows
//	Wind direction (°):  min / avg / max rows
//	Cloud cover:         high / medium / low fraction rows
//
// Missing cells parse to an explicit absent marker, never to zero: a dry day
// (0.0mm) and an unreported day are different facts.
//
// A forecast day missing any of the three mandatory parameters (temperature,
// rainfall, humidity) is dropped with a warning naming the date; remaining
// days survive. Partial results are preferred over total failure.
//
// # Query Conventions
//
// Free-text queries may be Bengali, English, or mixed. District names are
// resolved through the gazetteer (exact alias match in either script, then
// bounded edit distance against canonical names). The forecast horizon
// defaults to 3 days and is clamped to the 7 days the upstream tables offer.
// The asker role (farmer or citizen) is a best-effort vocabulary heuristic
// and never fails a request; Unknown is a legal, safe value.
package domain
