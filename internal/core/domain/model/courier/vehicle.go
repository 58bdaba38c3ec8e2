package courier

import (
	"fmt"

	"dispatch/internal/pkg/errs"
)

// VehicleType categorizes how a courier moves between locations.
// The type drives the assumed average speed used for ETA estimates.
type VehicleType int

const (
	// VehicleUnknown represents an invalid or undefined vehicle type.
	VehicleUnknown VehicleType = iota

	// VehicleWalker is a courier on foot.
	VehicleWalker

	// VehicleBicycle is a courier on a bicycle.
	VehicleBicycle

	// VehicleMotorbike is a courier on a motorbike or scooter.
	VehicleMotorbike

	// VehicleCar is a courier driving a car.
	VehicleCar
)

// getVehicleStrings returns a map of VehicleType values to their string representations.
func getVehicleStrings() map[VehicleType]string {
	return map[VehicleType]string{
		VehicleUnknown:   "Unknown",
		VehicleWalker:    "Walker",
		VehicleBicycle:   "Bicycle",
		VehicleMotorbike: "Motorbike",
		VehicleCar:       "Car",
	}
}

// getDefaultSpeedsKmh returns the assumed average speed per vehicle type in km/h.
// These are defaults; deployments override them through configuration.
func getDefaultSpeedsKmh() map[VehicleType]float64 {
	return map[VehicleType]float64{
		VehicleWalker:    5,
		VehicleBicycle:   15,
		VehicleMotorbike: 35,
		VehicleCar:       45,
	}
}

// VehicleTypeFromString parses a vehicle type from its lowercase wire name
// ("walker", "bicycle", "motorbike", "car"). Returns an error for any other input.
func VehicleTypeFromString(s string) (VehicleType, error) {
	switch s {
	case "walker":
		return VehicleWalker, nil
	case "bicycle":
		return VehicleBicycle, nil
	case "motorbike":
		return VehicleMotorbike, nil
	case "car":
		return VehicleCar, nil
	default:
		return VehicleUnknown, errs.NewValueIsInvalidErrorWithCause("vehicle type is invalid",
			fmt.Errorf("%q is not a valid vehicle type", s))
	}
}

// Validate checks if the VehicleType value is valid.
func (v VehicleType) Validate() error {
	if _, ok := getDefaultSpeedsKmh()[v]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("vehicle type is invalid",
			fmt.Errorf("%d is not a valid vehicle type", v))
	}
	return nil
}

// String returns the human-readable name of the vehicle type.
// Implements fmt.Stringer and is safe to call on any VehicleType value.
func (v VehicleType) String() string {
	if str, ok := getVehicleStrings()[v]; ok {
		return str
	}
	return "Unknown"
}

// DefaultSpeedKmh returns the assumed average speed for the vehicle type in
// km/h, or 0 for invalid types.
func (v VehicleType) DefaultSpeedKmh() float64 {
	return getDefaultSpeedsKmh()[v]
}
