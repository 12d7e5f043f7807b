package validators

import "go.mongodb.org/mongo-driver/bson"

var BookingValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"resource_id",
			"user_id",
			"start_time",
			"end_time",
			"status",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"resource_id": bson.M{
				"bsonType":  "string",
				"minLength": 1,
				"maxLength": 128,
			},

			"user_id": bson.M{
				"bsonType":  "string",
				"minLength": 1,
				"maxLength": 128,
			},

			"start_time": bson.M{
				"bsonType": "date",
			},

			"end_time": bson.M{
				"bsonType": "date",
			},

			"status": bson.M{
				"bsonType": "string",
				"enum": []string{
					"pending",
					"confirmed",
					"cancelled",
				},
			},

			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}

var BookingLockValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"expires_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "string",
			},

			"expires_at": bson.M{
				"bsonType": "date",
			},

			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
