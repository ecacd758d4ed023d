package fakeapi

// Seeded returns a server with every dashboard domain and a small data set.
func Seeded() *Server {
	s := New()
	s.AddCollection("/hubs", "hub",
		Record{"id": "hub-1", "name": "Lahore Central", "code": "LHR01", "city": "Lahore", "address": "Mall Road", "status": "active"},
		Record{"id": "hub-2", "name": "Lahore Cantt", "code": "LHR02", "city": "Lahore", "address": "Sarwar Road", "status": "active"},
		Record{"id": "hub-3", "name": "Karachi Port", "code": "KHI01", "city": "Karachi", "address": "Keamari", "status": "inactive"},
	)
	s.AddCollection("/riders", "rider",
		Record{"id": "rider-1", "name": "Ali Raza", "email": "ali@example.com", "phone": "+923001234567", "hubId": "hub-1", "status": "active"},
		Record{"id": "rider-2", "name": "Bilal Khan", "email": "bilal@example.com", "phone": "+923001234568", "hubId": "hub-1", "status": "active"},
		Record{"id": "rider-3", "name": "Sana Iqbal", "email": "sana@example.com", "phone": "+923001234569", "hubId": "hub-3", "status": "inactive"},
	)
	s.CountRelated("/hubs", "riderCount", "/riders", "hubId", "totalRiders")
	s.AddCollection("/merchants", "merchant",
		Record{"id": "merchant-1", "businessName": "Chai Co", "contactName": "Hina", "email": "hina@chai.example", "city": "Lahore", "status": "active"},
	)
	s.AddCollection("/shipments", "shipment",
		Record{"id": "shipment-1", "trackingNumber": "FS-1001", "merchantId": "merchant-1", "hubId": "hub-1", "recipientName": "Umar", "status": "pending"},
		Record{"id": "shipment-2", "trackingNumber": "FS-1002", "merchantId": "merchant-1", "hubId": "hub-1", "riderId": "rider-1", "recipientName": "Ayesha", "status": "in_transit"},
	)
	s.AddCollection("/payments", "payment",
		Record{"id": "payment-1", "reference": "PAY-1", "payeeId": "merchant-1", "payeeType": "merchant", "walletId": "wallet-1", "amount": 1500.0, "status": "pending"},
	)
	s.AddCollection("/wallets", "wallet",
		Record{"id": "wallet-1", "ownerId": "merchant-1", "ownerType": "merchant", "ownerName": "Chai Co", "balance": 5000.0, "currency": "PKR", "status": "active",
			"transactions": []any{map[string]any{"id": "txn-1", "walletId": "wallet-1", "type": "credit", "amount": 5000.0}}},
	)
	s.AddCollection("/support/tickets", "ticket",
		Record{"id": "ticket-1", "subject": "Parcel delayed", "category": "delivery", "priority": "high", "status": "open"},
	)
	s.AddCollection("/cms", "content",
		Record{"id": "content-1", "type": "faq", "title": "How do I track?", "slug": "track", "published": true, "status": "published"},
		Record{"id": "content-2", "type": "banner", "title": "Eid sale", "slug": "eid", "published": false, "status": "draft"},
	)
	s.AddDocument("/settings", Record{"companyName": "FleetSync", "supportEmail": "support@example.com", "currency": "PKR", "baseDeliveryFee": 150.0})
	s.AddDocument("/profile", Record{"id": "admin-1", "name": "Admin", "email": "admin@example.com", "role": "admin"})
	s.AddDocument("/profile/password", Record{})
	s.AddDocument("/analytics/overview", Record{"totalShipments": 2, "activeRiders": 2, "activeHubs": 2, "revenue": 1500.0})
	s.AddDocument("/analytics/series", Record{})
	return s
}
